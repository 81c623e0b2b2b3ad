package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/pkg/repository"
)

// Process stages a claim's evidence to a scratch directory, runs the
// cascading classifier over the batch, and persists the report and
// verdicts. The claim moves to processed on success and failed on any
// staging or persistence error; classification itself cannot fail a claim,
// only empty batches can.
func (r *repo) Process(ctx context.Context, claimID uuid.UUID) (*Report, error) {
	claim, err := r.claims.Find(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if err := r.claims.SetStatus(ctx, claimID, claims.StatusProcessing); err != nil {
		return nil, err
	}

	report, err := r.process(ctx, claim)
	if err != nil {
		if statusErr := r.claims.SetStatus(ctx, claimID, claims.StatusFailed); statusErr != nil {
			r.logger.Warn("status update failed after processing error", "claim", claimID, "error", statusErr)
		}
		return nil, err
	}

	if err := r.claims.SetStatus(ctx, claimID, claims.StatusProcessed); err != nil {
		return nil, err
	}

	r.logger.Info("claim processed",
		"claim", claimID,
		"files", report.FileCount,
		"flagged", report.AIDetectedCount,
		"risk", report.RiskScore,
		"confidence", report.Confidence)
	return report, nil
}

func (r *repo) process(ctx context.Context, claim *claims.Claim) (*Report, error) {
	evidence, err := r.claims.Evidence(ctx, claim.ID)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp(r.pipeline.WorkDir, "claimsight-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	items, err := r.stageEvidence(ctx, evidence, tempDir)
	if err != nil {
		return nil, err
	}

	batch, err := r.processor.Process(ctx, items, detection.PolicyFor(batchKind(items)))
	if err != nil {
		return nil, err
	}

	return r.persist(ctx, claim.ID, batch)
}

// stageEvidence downloads the claim's blobs concurrently into the scratch
// directory. Staging is the only concurrent stage; classification of the
// staged items remains strictly sequential.
func (r *repo) stageEvidence(
	ctx context.Context,
	evidence []claims.Evidence,
	tempDir string,
) ([]*detection.MediaItem, error) {
	items := make([]*detection.MediaItem, len(evidence))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.pipeline.StagingConcurrency)

	for i, e := range evidence {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			blob, err := r.storage.Download(gctx, e.StorageKey)
			if err != nil {
				return fmt.Errorf("download %s: %w", e.StorageKey, err)
			}
			defer blob.Body.Close()

			data, err := io.ReadAll(blob.Body)
			if err != nil {
				return fmt.Errorf("read %s: %w", e.StorageKey, err)
			}

			path := filepath.Join(tempDir, fmt.Sprintf("%s-%s", e.ID, filepath.Base(e.Filename)))
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("stage %s: %w", e.Filename, err)
			}

			items[i] = &detection.MediaItem{
				Name: e.Filename,
				Size: e.SizeBytes,
				Kind: e.MediaKind,
				Data: data,
				Path: path,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// batchKind selects the risk policy input: a batch containing any video is
// scored under the video policy, where individual hits weigh heavier.
func batchKind(items []*detection.MediaItem) detection.MediaKind {
	for _, item := range items {
		if item.Kind == detection.KindVideo {
			return detection.KindVideo
		}
	}
	return detection.KindImage
}

func (r *repo) persist(ctx context.Context, claimID uuid.UUID, batch *detection.BatchReport) (*Report, error) {
	notes := fmt.Sprintf("%d of %d files flagged as AI generated", batch.AIDetectedCount, batch.FileCount)

	upsertQ := `
		INSERT INTO reports(id, claim_id, file_count, ai_detected_count, genuine_count, risk_score, confidence, notes, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (claim_id) DO UPDATE SET
			file_count = EXCLUDED.file_count,
			ai_detected_count = EXCLUDED.ai_detected_count,
			genuine_count = EXCLUDED.genuine_count,
			risk_score = EXCLUDED.risk_score,
			confidence = EXCLUDED.confidence,
			notes = EXCLUDED.notes,
			processed_at = EXCLUDED.processed_at
		RETURNING id, claim_id, file_count, ai_detected_count, genuine_count, risk_score, confidence, notes, processed_at`

	upsertArgs := []any{
		uuid.New(),
		claimID,
		batch.FileCount,
		batch.AIDetectedCount,
		batch.GenuineCount,
		string(batch.RiskScore),
		batch.Confidence,
		notes,
		batch.ProcessedAt,
	}

	insertVerdictQ := `
		INSERT INTO verdicts(id, report_id, filename, size_bytes, media_kind, authenticity, failed_at_layer, generator, details, layers, duplicate_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	rep, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Report, error) {
		rep, err := repository.QueryOne(ctx, tx, upsertQ, upsertArgs, scanReport)
		if err != nil {
			return Report{}, fmt.Errorf("upsert report: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM verdicts WHERE report_id = $1", rep.ID); err != nil {
			return Report{}, fmt.Errorf("clear verdicts: %w", err)
		}

		for _, item := range batch.Items {
			layers, err := json.Marshal(item.Layers)
			if err != nil {
				return Report{}, fmt.Errorf("marshal layers: %w", err)
			}

			if _, err := tx.ExecContext(ctx, insertVerdictQ,
				uuid.New(),
				rep.ID,
				item.Name,
				item.Size,
				string(item.Kind),
				string(item.Authenticity),
				item.FailedAtLayer,
				failedGenerator(item),
				item.Details,
				layers,
				item.DuplicateOf,
			); err != nil {
				return Report{}, fmt.Errorf("insert verdict %s: %w", item.Name, err)
			}
		}

		return rep, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rep, nil
}

func failedGenerator(v detection.ItemVerdict) string {
	for _, layer := range v.Layers {
		if !layer.Passed && layer.Generator != "" {
			return layer.Generator
		}
	}
	return ""
}
