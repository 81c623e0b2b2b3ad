package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/pkg/pagination"
)

// System defines the public contract for report domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Report], error)

	Find(ctx context.Context, id uuid.UUID) (*Report, error)
	FindByClaim(ctx context.Context, claimID uuid.UUID) (*Report, error)
	Verdicts(ctx context.Context, reportID uuid.UUID) ([]Verdict, error)
	Process(ctx context.Context, claimID uuid.UUID) (*Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
