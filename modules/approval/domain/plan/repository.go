package plan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) (*Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	// GetByIDForUpdate locks the plan row for the remainder of the
	// transaction, serializing concurrent transitions on the same plan.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Plan, error)
	List(ctx context.Context, params *FindParams) ([]*Plan, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	// Update writes the plan back, failing when Version no longer matches.
	Update(ctx context.Context, p *Plan) (*Plan, error)
	// ListPendingForRole returns non-terminal plans with no active letter
	// from the given role. The queue is derived from ledger state, never
	// from a separate flag.
	ListPendingForRole(ctx context.Context, role string) ([]*Plan, error)
}
