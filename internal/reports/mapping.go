package reports

import (
	"net/url"
	"strconv"

	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/pkg/query"
	"github.com/claimsight/claimsight/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reports", "r").
	Project("id", "ID").
	Project("claim_id", "ClaimID").
	Project("file_count", "FileCount").
	Project("ai_detected_count", "AIDetectedCount").
	Project("genuine_count", "GenuineCount").
	Project("risk_score", "RiskScore").
	Project("confidence", "Confidence").
	Project("notes", "Notes").
	Project("processed_at", "ProcessedAt")

var defaultSort = query.SortField{
	Field:      "ProcessedAt",
	Descending: true,
}

var verdictProjection = query.
	NewProjectionMap("public", "verdicts", "v").
	Project("id", "ID").
	Project("report_id", "ReportID").
	Project("filename", "Filename").
	Project("size_bytes", "SizeBytes").
	Project("media_kind", "MediaKind").
	Project("authenticity", "Authenticity").
	Project("failed_at_layer", "FailedAtLayer").
	Project("generator", "Generator").
	Project("details", "Details").
	Project("layers", "Layers").
	Project("duplicate_of", "DuplicateOf").
	Project("created_at", "CreatedAt")

var verdictSort = query.SortField{Field: "CreatedAt"}

// Filters contains optional filtering criteria for report queries.
// Nil fields are ignored.
type Filters struct {
	RiskScore     *string `json:"risk_score,omitempty"`
	MinConfidence *int    `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("RiskScore", f.RiskScore)
	if f.MinConfidence != nil {
		b.WhereAtLeast("Confidence", *f.MinConfidence)
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if rs := values.Get("risk_score"); rs != "" {
		f.RiskScore = &rs
	}
	if mc := values.Get("min_confidence"); mc != "" {
		if v, err := strconv.Atoi(mc); err == nil {
			f.MinConfidence = &v
		}
	}

	return f
}

func scanReport(s repository.Scanner) (Report, error) {
	var r Report
	var risk string
	err := s.Scan(
		&r.ID,
		&r.ClaimID,
		&r.FileCount,
		&r.AIDetectedCount,
		&r.GenuineCount,
		&risk,
		&r.Confidence,
		&r.Notes,
		&r.ProcessedAt,
	)
	r.RiskScore = detection.RiskScore(risk)
	return r, err
}

func scanVerdict(s repository.Scanner) (Verdict, error) {
	var v Verdict
	var kind, authenticity string
	err := s.Scan(
		&v.ID,
		&v.ReportID,
		&v.Filename,
		&v.SizeBytes,
		&kind,
		&authenticity,
		&v.FailedAtLayer,
		&v.Generator,
		&v.Details,
		&v.Layers,
		&v.DuplicateOf,
		&v.CreatedAt,
	)
	v.MediaKind = detection.MediaKind(kind)
	v.Authenticity = detection.Authenticity(authenticity)
	return v, err
}
