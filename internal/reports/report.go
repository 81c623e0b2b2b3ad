// Package reports implements the authenticity-report domain for ClaimSight.
// It provides types, data access, and the processing pipeline that stages a
// claim's evidence, runs the cascading classifier over it, and persists the
// resulting report and per-file verdicts.
package reports

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/detection"
)

// Report is the stored authenticity report for one processed claim.
type Report struct {
	ID              uuid.UUID           `json:"id"`
	ClaimID         uuid.UUID           `json:"claim_id"`
	FileCount       int                 `json:"file_count"`
	AIDetectedCount int                 `json:"ai_detected_count"`
	GenuineCount    int                 `json:"genuine_count"`
	RiskScore       detection.RiskScore `json:"risk_score"`
	Confidence      int                 `json:"confidence"`
	Notes           string              `json:"notes"`
	ProcessedAt     time.Time           `json:"processed_at"`
}

// Verdict is the stored determination for one evidence file. Layers holds
// the executed layer outcomes as JSON.
type Verdict struct {
	ID            uuid.UUID              `json:"id"`
	ReportID      uuid.UUID              `json:"report_id"`
	Filename      string                 `json:"filename"`
	SizeBytes     int64                  `json:"size_bytes"`
	MediaKind     detection.MediaKind    `json:"media_kind"`
	Authenticity  detection.Authenticity `json:"authenticity"`
	FailedAtLayer int                    `json:"failed_at_layer"`
	Generator     string                 `json:"generator,omitempty"`
	Details       string                 `json:"details"`
	Layers        json.RawMessage        `json:"layers"`
	DuplicateOf   string                 `json:"duplicate_of,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}
