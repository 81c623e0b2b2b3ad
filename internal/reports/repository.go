package reports

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/pkg/pagination"
	"github.com/claimsight/claimsight/pkg/query"
	"github.com/claimsight/claimsight/pkg/repository"
	"github.com/claimsight/claimsight/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	claims     claims.System
	processor  *detection.BatchProcessor
	pipeline   config.PipelineConfig
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a report repository implementing the System interface. It
// internally constructs the batch processor around the provided detector.
func New(
	db *sql.DB,
	store storage.System,
	claimSys claims.System,
	detector detection.DeepDetector,
	pipeline config.PipelineConfig,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	delays := detection.Delays{
		DetectorBase:   pipeline.DetectorDelayDuration(),
		DetectorJitter: pipeline.DetectorJitterDuration(),
		ItemBase:       pipeline.ItemDelayDuration(),
		ItemJitter:     pipeline.ItemJitterDuration(),
	}
	return &repo{
		db:         db,
		storage:    store,
		claims:     claimSys,
		processor:  detection.NewBatchProcessor(detector, delays, logger),
		pipeline:   pipeline,
		logger:     logger.With("system", "reports"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Report], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Notes")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReport)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Report, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rep, err := repository.QueryOne(ctx, r.db, q, args, scanReport)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rep, nil
}

func (r *repo) FindByClaim(ctx context.Context, claimID uuid.UUID) (*Report, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ClaimID", claimID)

	rep, err := repository.QueryOne(ctx, r.db, q, args, scanReport)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rep, nil
}

func (r *repo) Verdicts(ctx context.Context, reportID uuid.UUID) ([]Verdict, error) {
	q, args := query.
		NewBuilder(verdictProjection, verdictSort).
		WhereEquals("ReportID", reportID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanVerdict)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM verdicts WHERE report_id = $1", id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM reports WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("report deleted", "id", id)
	return nil
}
