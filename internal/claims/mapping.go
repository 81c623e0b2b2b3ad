package claims

import (
	"net/url"

	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/pkg/query"
	"github.com/claimsight/claimsight/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "claims", "c").
	Project("id", "ID").
	Project("reference", "Reference").
	Project("notes", "Notes").
	Project("status", "Status").
	Project("file_count", "FileCount").
	Project("submitted_at", "SubmittedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: true,
}

var evidenceProjection = query.
	NewProjectionMap("public", "evidence", "e").
	Project("id", "ID").
	Project("claim_id", "ClaimID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("media_kind", "MediaKind").
	Project("storage_key", "StorageKey").
	Project("uploaded_at", "UploadedAt")

var evidenceSort = query.SortField{Field: "UploadedAt"}

// Filters contains optional filtering criteria for claim queries.
// Nil fields are ignored. Status uses exact matching; Reference uses
// case-insensitive contains matching.
type Filters struct {
	Status    *string `json:"status,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Reference", f.Reference)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if ref := values.Get("reference"); ref != "" {
		f.Reference = &ref
	}

	return f
}

func scanClaim(s repository.Scanner) (Claim, error) {
	var c Claim
	err := s.Scan(
		&c.ID,
		&c.Reference,
		&c.Notes,
		&c.Status,
		&c.FileCount,
		&c.SubmittedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func scanEvidence(s repository.Scanner) (Evidence, error) {
	var e Evidence
	var kind string
	err := s.Scan(
		&e.ID,
		&e.ClaimID,
		&e.Filename,
		&e.ContentType,
		&e.SizeBytes,
		&kind,
		&e.StorageKey,
		&e.UploadedAt,
	)
	e.MediaKind = detection.MediaKind(kind)
	return e, err
}
