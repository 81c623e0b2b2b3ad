package claims

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/pkg/pagination"
	"github.com/claimsight/claimsight/pkg/query"
	"github.com/claimsight/claimsight/pkg/repository"
	"github.com/claimsight/claimsight/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	publisher  Publisher
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a claim repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	publisher Publisher,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		publisher:  publisher,
		logger:     logger.With("system", "claims"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Claim], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Reference", "Notes")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Claim, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClaim)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Claim, error) {
	q := `
		INSERT INTO claims(id, reference, notes)
		VALUES ($1, $2, $3)
		RETURNING id, reference, notes, status, file_count, submitted_at, updated_at`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Claim, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), cmd.Reference, cmd.Notes}, scanClaim)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("claim created", "id", c.ID, "reference", c.Reference)
	return &c, nil
}

// Attach uploads one evidence blob and registers its row, bumping the
// claim's file count in the same transaction. A failed insert compensates
// with a blob delete.
func (r *repo) Attach(ctx context.Context, cmd AttachCommand) (*Evidence, error) {
	claim, err := r.Find(ctx, cmd.ClaimID)
	if err != nil {
		return nil, err
	}
	if claim.Status != StatusPending {
		return nil, ErrNotPending
	}

	id := uuid.New()
	key := buildStorageKey(cmd.ClaimID, id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload evidence blob: %w", err)
	}

	q := `
		INSERT INTO evidence(id, claim_id, filename, content_type, size_bytes, media_kind, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, claim_id, filename, content_type, size_bytes, media_kind, storage_key, uploaded_at`

	insertArgs := []any{
		id,
		cmd.ClaimID,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		string(detection.KindForFilename(cmd.Filename)),
		key,
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Evidence, error) {
		ev, err := repository.QueryOne(ctx, tx, q, insertArgs, scanEvidence)
		if err != nil {
			return ev, err
		}
		err = repository.ExecExpectOne(
			ctx, tx,
			"UPDATE claims SET file_count = file_count + 1, updated_at = now() WHERE id = $1",
			cmd.ClaimID,
		)
		return ev, err
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("evidence attached", "claim", cmd.ClaimID, "id", e.ID, "filename", e.Filename, "kind", e.MediaKind)
	return &e, nil
}

func (r *repo) Evidence(ctx context.Context, claimID uuid.UUID) ([]Evidence, error) {
	q, args := query.
		NewBuilder(evidenceProjection, evidenceSort).
		WhereEquals("ClaimID", claimID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanEvidence)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	return items, nil
}

// Submit transitions a pending claim to queued and publishes it for
// processing. A claim with no evidence cannot be submitted.
func (r *repo) Submit(ctx context.Context, id uuid.UUID) (*Claim, error) {
	claim, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status != StatusPending {
		return nil, ErrNotPending
	}
	if claim.FileCount == 0 {
		return nil, ErrNoEvidence
	}

	if err := r.SetStatus(ctx, id, StatusQueued); err != nil {
		return nil, err
	}

	if err := r.publisher.PublishClaim(ctx, id); err != nil {
		if revertErr := r.SetStatus(ctx, id, StatusPending); revertErr != nil {
			r.logger.Warn("status revert failed after publish error", "id", id, "error", revertErr)
		}
		return nil, fmt.Errorf("publish claim: %w", err)
	}

	r.logger.Info("claim submitted", "id", id, "files", claim.FileCount)
	return r.Find(ctx, id)
}

func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"UPDATE claims SET status = $2, updated_at = now() WHERE id = $1",
			id, status,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	evidence, err := r.Evidence(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM evidence WHERE claim_id = $1", id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM claims WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for _, e := range evidence {
		if delErr := r.storage.Delete(ctx, e.StorageKey); delErr != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", e.StorageKey, "error", delErr)
		}
	}

	r.logger.Info("claim deleted", "id", id, "evidence", len(evidence))
	return nil
}

func buildStorageKey(claimID, evidenceID uuid.UUID, filename string) string {
	return fmt.Sprintf("claims/%s/%s/%s", claimID, evidenceID, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "evidence"
	}
	return url.PathEscape(name)
}
