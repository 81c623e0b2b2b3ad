// Package claims implements the claim domain for ClaimSight. It provides
// types, data access, and business logic for claim intake, evidence upload,
// blob storage integration, and submission for authenticity processing.
package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/detection"
)

// Claim statuses. A claim moves pending -> queued -> processing ->
// processed, or to failed when processing cannot complete.
const (
	StatusPending    = "pending"
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Claim represents an insurance claim whose attached media is subject to
// authenticity analysis.
type Claim struct {
	ID          uuid.UUID `json:"id"`
	Reference   string    `json:"reference"`
	Notes       string    `json:"notes"`
	Status      string    `json:"status"`
	FileCount   int       `json:"file_count"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Evidence is a single media file attached to a claim, with its blob
// storage reference.
type Evidence struct {
	ID          uuid.UUID           `json:"id"`
	ClaimID     uuid.UUID           `json:"claim_id"`
	Filename    string              `json:"filename"`
	ContentType string              `json:"content_type"`
	SizeBytes   int64               `json:"size_bytes"`
	MediaKind   detection.MediaKind `json:"media_kind"`
	StorageKey  string              `json:"storage_key"`
	UploadedAt  time.Time           `json:"uploaded_at"`
}

// CreateCommand carries the data needed to register a new claim.
type CreateCommand struct {
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// AttachCommand carries the data needed to upload one evidence file.
// Data holds the raw file bytes.
type AttachCommand struct {
	ClaimID     uuid.UUID
	Data        []byte
	Filename    string
	ContentType string
}

// AttachResult reports the outcome of a single file within a batch upload.
// On success, Evidence is populated and Error is empty.
type AttachResult struct {
	Evidence *Evidence `json:"evidence,omitempty"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}
