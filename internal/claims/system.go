package claims

import (
	"context"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/pkg/pagination"
)

// Publisher enqueues a claim for asynchronous authenticity processing.
type Publisher interface {
	PublishClaim(ctx context.Context, id uuid.UUID) error
}

// System defines the public contract for claim domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Claim], error)

	Find(ctx context.Context, id uuid.UUID) (*Claim, error)
	Create(ctx context.Context, cmd CreateCommand) (*Claim, error)
	Attach(ctx context.Context, cmd AttachCommand) (*Evidence, error)
	Evidence(ctx context.Context, claimID uuid.UUID) ([]Evidence, error)
	Submit(ctx context.Context, id uuid.UUID) (*Claim, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
