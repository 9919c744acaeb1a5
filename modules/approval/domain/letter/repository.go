package letter

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert records a decision for (plan, role). A previous active letter
	// from the same role is marked superseded, never deleted, so the ledger
	// keeps an audit trail while exactly one letter per role stays active.
	Upsert(ctx context.Context, l *Letter) (*Letter, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Letter, error)
	// ListActiveByPlan returns the most recent non-superseded letter per
	// role for the given plan.
	ListActiveByPlan(ctx context.Context, planID uuid.UUID) ([]*Letter, error)
	MarkSent(ctx context.Context, id uuid.UUID) (*Letter, error)
	MarkReceived(ctx context.Context, id uuid.UUID) (*Letter, error)
}
