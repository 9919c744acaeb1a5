package release

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the bundle; a second insert for the same plan fails on
	// the unique (tenant, plan) constraint.
	Create(ctx context.Context, b *Bundle) (*Bundle, error)
	GetByPlan(ctx context.Context, planID uuid.UUID) (*Bundle, error)
	ExistsForPlan(ctx context.Context, planID uuid.UUID) (bool, error)
}
