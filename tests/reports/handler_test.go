package reports_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/internal/reports"
	"github.com/claimsight/claimsight/pkg/pagination"
)

type mockSystem struct {
	listFn        func(ctx context.Context, page pagination.PageRequest, filters reports.Filters) (*pagination.PageResult[reports.Report], error)
	findFn        func(ctx context.Context, id uuid.UUID) (*reports.Report, error)
	findByClaimFn func(ctx context.Context, claimID uuid.UUID) (*reports.Report, error)
	verdictsFn    func(ctx context.Context, reportID uuid.UUID) ([]reports.Verdict, error)
	processFn     func(ctx context.Context, claimID uuid.UUID) (*reports.Report, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystem) Handler() *reports.Handler {
	return reports.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters reports.Filters) (*pagination.PageResult[reports.Report], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*reports.Report, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) FindByClaim(ctx context.Context, claimID uuid.UUID) (*reports.Report, error) {
	return m.findByClaimFn(ctx, claimID)
}

func (m *mockSystem) Verdicts(ctx context.Context, reportID uuid.UUID) ([]reports.Verdict, error) {
	return m.verdictsFn(ctx, reportID)
}

func (m *mockSystem) Process(ctx context.Context, claimID uuid.UUID) (*reports.Report, error) {
	return m.processFn(ctx, claimID)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func setupMux(h *reports.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleReport() reports.Report {
	return reports.Report{
		ID:              uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		ClaimID:         uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		FileCount:       4,
		AIDetectedCount: 1,
		GenuineCount:    3,
		RiskScore:       detection.RiskMedium,
		Confidence:      75,
		Notes:           "1 of 4 files flagged as AI generated",
		ProcessedAt:     time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	}
}

func sampleVerdict(reportID uuid.UUID) reports.Verdict {
	return reports.Verdict{
		ID:            uuid.New(),
		ReportID:      reportID,
		Filename:      "sora_clip.mp4",
		SizeBytes:     4096,
		MediaKind:     detection.KindVideo,
		Authenticity:  detection.AIGenerated,
		FailedAtLayer: 1,
		Generator:     "Sora",
		Details:       `layer 1: filename contains generator signature "sora" (Sora)`,
		Layers:        json.RawMessage(`[{"layer":1,"passed":false}]`),
		CreatedAt:     time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	}
}

func TestHandlerList(t *testing.T) {
	report := sampleReport()
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, _ reports.Filters) (*pagination.PageResult[reports.Report], error) {
			result := pagination.NewPageResult([]reports.Report{report}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[reports.Report]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].RiskScore != detection.RiskMedium {
		t.Errorf("result = %+v, want single Medium report", result)
	}
}

func TestHandlerListFilters(t *testing.T) {
	var captured reports.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f reports.Filters) (*pagination.PageResult[reports.Report], error) {
			captured = f
			result := pagination.NewPageResult([]reports.Report{}, 0, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports?risk_score=High&min_confidence=50", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.RiskScore == nil || *captured.RiskScore != "High" {
		t.Errorf("risk_score filter = %v, want High", captured.RiskScore)
	}
	if captured.MinConfidence == nil || *captured.MinConfidence != 50 {
		t.Errorf("min_confidence filter = %v, want 50", captured.MinConfidence)
	}
}

func TestHandlerFind(t *testing.T) {
	report := sampleReport()

	t.Run("returns report by id", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, id uuid.UUID) (*reports.Report, error) {
				if id != report.ID {
					return nil, reports.ErrNotFound
				}
				return &report, nil
			},
		}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports/"+report.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got reports.Report
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Confidence != 75 {
			t.Errorf("confidence = %d, want 75", got.Confidence)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, _ uuid.UUID) (*reports.Report, error) {
				return nil, reports.ErrNotFound
			},
		}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports/"+uuid.NewString(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports/not-a-uuid", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerFindByClaim(t *testing.T) {
	report := sampleReport()
	sys := &mockSystem{
		findByClaimFn: func(_ context.Context, claimID uuid.UUID) (*reports.Report, error) {
			if claimID != report.ClaimID {
				return nil, reports.ErrNotFound
			}
			return &report, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/claim/"+report.ClaimID.String(), nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got reports.Report
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != report.ID {
		t.Errorf("id = %v, want %v", got.ID, report.ID)
	}
}

func TestHandlerVerdicts(t *testing.T) {
	report := sampleReport()
	verdict := sampleVerdict(report.ID)

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*reports.Report, error) {
			if id != report.ID {
				return nil, reports.ErrNotFound
			}
			return &report, nil
		},
		verdictsFn: func(_ context.Context, reportID uuid.UUID) ([]reports.Verdict, error) {
			return []reports.Verdict{verdict}, nil
		},
	}
	mux := setupMux(sys.Handler())

	t.Run("lists verdicts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports/"+report.ID.String()+"/verdicts", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got []reports.Verdict
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 1 || got[0].Generator != "Sora" {
			t.Errorf("verdicts = %+v, want single Sora verdict", got)
		}
	})

	t.Run("unknown report returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports/"+uuid.NewString()+"/verdicts", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	var captured reports.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f reports.Filters) (*pagination.PageResult[reports.Report], error) {
			captured = f
			result := pagination.NewPageResult([]reports.Report{}, 0, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports/search", strings.NewReader(`{"page": 1, "risk_score": "High"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.RiskScore == nil || *captured.RiskScore != "High" {
		t.Errorf("risk_score filter = %v, want High", captured.RiskScore)
	}
}

func TestHandlerProcess(t *testing.T) {
	report := sampleReport()

	t.Run("runs pipeline", func(t *testing.T) {
		sys := &mockSystem{
			processFn: func(_ context.Context, claimID uuid.UUID) (*reports.Report, error) {
				if claimID != report.ClaimID {
					return nil, reports.ErrNotFound
				}
				return &report, nil
			},
		}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/reports/claim/"+report.ClaimID.String()+"/process", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("empty batch returns 422", func(t *testing.T) {
		sys := &mockSystem{
			processFn: func(_ context.Context, _ uuid.UUID) (*reports.Report, error) {
				return nil, detection.ErrEmptyBatch
			},
		}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/reports/claim/"+uuid.NewString()+"/process", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	report := sampleReport()

	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != report.ID {
				return reports.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(sys.Handler())

	t.Run("deletes report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/reports/"+report.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/reports/"+uuid.NewString(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
