package detection

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// Delays describes the backpressure discipline against the external
// analyzer. A jittered pause precedes every deep detector invocation, and a
// longer jittered pause separates consecutive items in a batch.
type Delays struct {
	DetectorBase   time.Duration
	DetectorJitter time.Duration
	ItemBase       time.Duration
	ItemJitter     time.Duration
}

// DefaultDelays mirrors the analyzer scripts' own pacing: one second plus
// up to another second before each call, two to four seconds between items.
var DefaultDelays = Delays{
	DetectorBase:   time.Second,
	DetectorJitter: time.Second,
	ItemBase:       2 * time.Second,
	ItemJitter:     2 * time.Second,
}

// RiskPolicy maps a batch's counts to a claim-level risk bucket.
type RiskPolicy func(aiDetected, genuine, total int) RiskScore

// ImageRiskPolicy buckets by the fraction of items flagged: half or more is
// High, any at all is Medium.
func ImageRiskPolicy(aiDetected, genuine, total int) RiskScore {
	switch {
	case total > 0 && float64(aiDetected)/float64(total) >= 0.5:
		return RiskHigh
	case aiDetected > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// VideoRiskPolicy buckets by majority: more flagged than genuine is High,
// any flagged is Medium. The two policies diverge deliberately; video
// provenance hits are rarer and weigh heavier per item.
func VideoRiskPolicy(aiDetected, genuine, total int) RiskScore {
	switch {
	case aiDetected > genuine:
		return RiskHigh
	case aiDetected > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PolicyFor selects the risk policy for a batch's dominant media kind.
func PolicyFor(kind MediaKind) RiskPolicy {
	if kind == KindVideo {
		return VideoRiskPolicy
	}
	return ImageRiskPolicy
}

// BatchProcessor classifies the items of a claim strictly sequentially. It
// owns the single scheduling slot for the external detector: the jittered
// pre-call pause is applied by wrapping the detector, so no second analysis
// can start while one is in flight.
type BatchProcessor struct {
	classifier *Classifier
	delays     Delays
	sleep      func(time.Duration)
	logger     *slog.Logger
}

func NewBatchProcessor(detector DeepDetector, delays Delays, logger *slog.Logger) *BatchProcessor {
	p := &BatchProcessor{
		delays: delays,
		sleep:  time.Sleep,
		logger: logger.With("system", "batch"),
	}
	p.classifier = NewClassifier(&pacedDetector{inner: detector, processor: p}, logger)
	return p
}

// Process classifies every item in order and aggregates the verdicts into a
// report. Perceptual duplicates of an earlier image reuse its verdict and are
// excluded from the counts. An empty batch is the only fatal condition;
// individual item failures degrade to genuine verdicts via the fail-open
// rule.
func (p *BatchProcessor) Process(ctx context.Context, items []*MediaItem, policy RiskPolicy) (*BatchReport, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	report := &BatchReport{ProcessedAt: time.Now().UTC()}
	index := newDedupIndex()
	classified := map[string]ItemVerdict{}

	for i, item := range items {
		// Duplicates reuse the earlier verdict without spending a layer
		// cascade or a detector slot, and stay out of the counts.
		if prior := index.DuplicateOf(item); prior != "" {
			verdict := classified[prior]
			verdict.Name = item.Name
			verdict.Size = item.Size
			verdict.DuplicateOf = prior
			report.Items = append(report.Items, verdict)

			p.logger.Info("item deduplicated",
				"item", item.Name,
				"duplicate_of", prior,
				"progress", i+1,
				"total", len(items))
			continue
		}

		if report.FileCount > 0 {
			p.pause(p.delays.ItemBase, p.delays.ItemJitter)
		}

		verdict := p.classifier.Classify(ctx, item)
		classified[item.Name] = verdict

		report.FileCount++
		if verdict.Authenticity == AIGenerated {
			report.AIDetectedCount++
		} else {
			report.GenuineCount++
		}
		report.Items = append(report.Items, verdict)

		p.logger.Info("item classified",
			"item", item.Name,
			"kind", item.Kind,
			"authenticity", verdict.Authenticity,
			"layer", verdict.FailedAtLayer,
			"progress", i+1,
			"total", len(items))
	}

	report.RiskScore = policy(report.AIDetectedCount, report.GenuineCount, report.FileCount)
	report.Confidence = int(math.Round(float64(report.GenuineCount) / float64(report.FileCount) * 100))
	return report, nil
}

func (p *BatchProcessor) pause(base, jitter time.Duration) {
	d := base
	if jitter > 0 {
		d += rand.N(jitter)
	}
	if d > 0 {
		p.sleep(d)
	}
}

// pacedDetector applies the pre-call pause before delegating. The batch
// processor's sequential loop is its only caller, which is what makes the
// slot single.
type pacedDetector struct {
	inner     DeepDetector
	processor *BatchProcessor
}

func (d *pacedDetector) Analyze(ctx context.Context, path string, kind MediaKind) (*Result, error) {
	d.processor.pause(d.processor.delays.DetectorBase, d.processor.delays.DetectorJitter)
	return d.inner.Analyze(ctx, path, kind)
}
