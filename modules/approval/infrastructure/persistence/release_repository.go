package persistence

import (
	"context"
	stderrors "errors"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence/models"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/repo"
)

var (
	ErrBundleNotFound = errors.New("release bundle not found")
	ErrBundleExists   = errors.New("release bundle already exists for plan")
)

const (
	bundleFindQuery = `
        SELECT b.id, b.tenant_id, b.plan_id, b.documents, b.released_by, b.released_at
        FROM release_bundles b`

	bundleInsertQuery = `
        INSERT INTO release_bundles (tenant_id, plan_id, documents, released_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, released_at`

	bundleExistsQuery = `SELECT EXISTS (
        SELECT 1 FROM release_bundles WHERE tenant_id = $1 AND plan_id = $2
    )`
)

type PgReleaseRepository struct{}

func NewReleaseRepository() release.Repository {
	return &PgReleaseRepository{}
}

func (g *PgReleaseRepository) Create(ctx context.Context, b *release.Bundle) (*release.Bundle, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	documents, err := encodeBundleDocuments(b.Documents)
	if err != nil {
		return nil, err
	}

	out := *b
	out.TenantID = tenantID
	if err := tx.QueryRow(ctx, bundleInsertQuery,
		tenantID,
		b.PlanID,
		documents,
		b.ReleasedBy,
	).Scan(&out.ID, &out.ReleasedAt); err != nil {
		if repo.IsUniqueViolation(err, "release_bundles_tenant_id_plan_id_key") {
			return nil, ErrBundleExists
		}
		return nil, errors.Wrap(err, "failed to persist release bundle")
	}
	return &out, nil
}

func (g *PgReleaseRepository) GetByPlan(ctx context.Context, planID uuid.UUID) (*release.Bundle, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var m models.ReleaseBundle
	err = tx.QueryRow(ctx, bundleFindQuery+` WHERE b.tenant_id = $1 AND b.plan_id = $2`, tenantID, planID).Scan(
		&m.ID,
		&m.TenantID,
		&m.PlanID,
		&m.Documents,
		&m.ReleasedBy,
		&m.ReleasedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return toDomainBundle(&m)
}

func (g *PgReleaseRepository) ExistsForPlan(ctx context.Context, planID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, bundleExistsQuery, tenantID, planID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
