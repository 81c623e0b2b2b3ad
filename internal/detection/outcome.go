// Package detection implements the cascading media-authenticity pipeline for
// ClaimSight. It provides the three classification layers (filename signature
// matching, metadata heuristics, deep external analysis), the per-item
// classifier, and the sequential batch processor that produces claim-level
// risk reports.
package detection

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MediaKind distinguishes the two supported evidence pipelines.
type MediaKind string

// Supported media kinds.
const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".mkv":  true,
}

// KindForFilename derives the media kind from a filename extension.
// Unrecognized extensions default to image.
func KindForFilename(name string) MediaKind {
	if videoExtensions[strings.ToLower(filepath.Ext(name))] {
		return KindVideo
	}
	return KindImage
}

// Confidence is a qualitative certainty level attached to a layer outcome.
type Confidence string

// Confidence levels, ordered weakest to strongest.
const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very high"
)

// Authenticity is the binary determination for a single media item.
type Authenticity string

// Authenticity determinations. Every verdict carries exactly one.
const (
	LikelyGenuine Authenticity = "Likely Genuine"
	AIGenerated   Authenticity = "AI Generated"
)

// MediaItem is a single piece of evidence staged for classification.
// Data holds the raw bytes for metadata scanning and perceptual hashing;
// Path references the staged file handed to the external detector.
type MediaItem struct {
	Name string
	Size int64
	Kind MediaKind
	Data []byte
	Path string
}

// LayerOutcome records the result of one classification layer for one item.
// Layer 3 outcomes additionally carry the external detector's percentages
// and free-text verdict; layer 2 pass outcomes may carry screenshot,
// camera-photo, and device findings.
type LayerOutcome struct {
	Layer      int        `json:"layer"`
	Passed     bool       `json:"passed"`
	Generator  string     `json:"generator,omitempty"`
	SourceType string     `json:"source_type,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Indicators []string   `json:"indicators,omitempty"`

	AIPercentage    *float64 `json:"ai_percentage,omitempty"`
	HumanPercentage *float64 `json:"human_percentage,omitempty"`
	Verdict         string   `json:"verdict,omitempty"`
	Error           string   `json:"error,omitempty"`

	Screenshot  bool   `json:"screenshot,omitempty"`
	CameraPhoto bool   `json:"camera_photo,omitempty"`
	Device      string `json:"device,omitempty"`
}

// ItemVerdict is the terminal classification for a single media item.
// FailedAtLayer is zero when the item passed every executed layer; Layers
// holds only the layers that actually ran, in execution order.
type ItemVerdict struct {
	Name          string         `json:"name"`
	Size          int64          `json:"size"`
	Kind          MediaKind      `json:"kind"`
	Authenticity  Authenticity   `json:"authenticity"`
	FailedAtLayer int            `json:"failed_at_layer,omitempty"`
	Layers        []LayerOutcome `json:"layers"`
	Details       string         `json:"details"`
	DuplicateOf   string         `json:"duplicate_of,omitempty"`
}

// RiskScore is the claim-level severity bucket.
type RiskScore string

// Risk buckets.
const (
	RiskLow    RiskScore = "Low"
	RiskMedium RiskScore = "Medium"
	RiskHigh   RiskScore = "High"
)

// BatchReport aggregates the verdicts for one processed claim batch.
// FileCount counts distinct analyzed items; duplicates appear in Items with
// DuplicateOf set but stay out of the counts. Confidence is the percentage
// of analyzed items determined genuine.
type BatchReport struct {
	Items           []ItemVerdict `json:"items"`
	FileCount       int           `json:"file_count"`
	AIDetectedCount int           `json:"ai_detected_count"`
	GenuineCount    int           `json:"genuine_count"`
	RiskScore       RiskScore     `json:"risk_score"`
	Confidence      int           `json:"confidence"`
	ProcessedAt     time.Time     `json:"processed_at"`
}

func summarize(o LayerOutcome) string {
	switch {
	case !o.Passed && o.Generator != "":
		return fmt.Sprintf("layer %d: %s (%s)", o.Layer, o.Reason, o.Generator)
	case o.Reason != "":
		return fmt.Sprintf("layer %d: %s", o.Layer, o.Reason)
	default:
		return fmt.Sprintf("layer %d: no conclusive indicators", o.Layer)
	}
}
