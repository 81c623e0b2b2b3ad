package detection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Classifier runs the cascading layers for a single media item. Layers
// execute in order and stop at the first terminal determination: a layer 1
// or 2 hit ends the cascade early, and a corroborated video capture ends it
// genuine without deep analysis.
type Classifier struct {
	detector DeepDetector
	logger   *slog.Logger
}

func NewClassifier(detector DeepDetector, logger *slog.Logger) *Classifier {
	return &Classifier{
		detector: detector,
		logger:   logger.With("system", "classifier"),
	}
}

func (c *Classifier) Classify(ctx context.Context, item *MediaItem) ItemVerdict {
	verdict := ItemVerdict{
		Name: item.Name,
		Size: item.Size,
		Kind: item.Kind,
	}

	l1 := MatchFilename(item.Name)
	verdict.Layers = append(verdict.Layers, l1)
	if !l1.Passed {
		return c.conclude(verdict, l1)
	}

	var l2 LayerOutcome
	switch item.Kind {
	case KindVideo:
		l2 = AnalyzeVideoMetadata(item.Data, item.Name)
	default:
		l2 = AnalyzeImageMetadata(item.Data, item.Name)
	}
	verdict.Layers = append(verdict.Layers, l2)
	if !l2.Passed {
		return c.conclude(verdict, l2)
	}

	// Corroborated physical capture skips deep analysis for video only.
	// Image EXIF markers are cheap to forge; the image pipeline always
	// proceeds to layer 3.
	if item.Kind == KindVideo && l2.CameraPhoto {
		c.logger.Debug("capture corroborated, skipping deep analysis", "item", item.Name)
		return c.conclude(verdict, l2)
	}

	l3 := c.deepAnalyze(ctx, item)
	verdict.Layers = append(verdict.Layers, l3)
	return c.conclude(verdict, l3)
}

// deepAnalyze invokes the external detector and applies the fail-open rule:
// any transport, timeout, or analyzer failure yields a pass, never an AI
// determination.
func (c *Classifier) deepAnalyze(ctx context.Context, item *MediaItem) LayerOutcome {
	res, err := c.detector.Analyze(ctx, item.Path, item.Kind)
	if err != nil {
		c.logger.Warn("deep analysis unavailable", "item", item.Name, "error", err)
		return LayerOutcome{
			Layer:  3,
			Passed: true,
			Reason: "deep analysis unavailable",
			Error:  err.Error(),
		}
	}

	out := LayerOutcome{
		Layer:           3,
		Passed:          !res.IsAIGenerated,
		Verdict:         res.Verdict,
		AIPercentage:    &res.AIPercentage,
		HumanPercentage: &res.HumanPercentage,
		Confidence:      normalizeConfidence(res.Confidence),
	}
	if res.IsAIGenerated {
		out.Reason = fmt.Sprintf("deep analysis scored %.1f%% ai generated", res.AIPercentage)
	} else {
		out.Reason = fmt.Sprintf("deep analysis scored %.1f%% human", res.HumanPercentage)
	}
	return out
}

func (c *Classifier) conclude(verdict ItemVerdict, last LayerOutcome) ItemVerdict {
	if last.Passed {
		verdict.Authenticity = LikelyGenuine
	} else {
		verdict.Authenticity = AIGenerated
		verdict.FailedAtLayer = last.Layer
	}
	verdict.Details = summarize(last)
	return verdict
}

func normalizeConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceLow:
		return ConfidenceLow
	case ConfidenceMedium:
		return ConfidenceMedium
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceVeryHigh:
		return ConfidenceVeryHigh
	}
	return ""
}
