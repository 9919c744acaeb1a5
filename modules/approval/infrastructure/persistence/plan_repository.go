package persistence

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence/models"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/repo"
)

var (
	ErrPlanNotFound     = errors.New("event plan not found")
	ErrPlanVersionStale = errors.New("event plan was modified concurrently")
)

const (
	planFindQuery = `
        SELECT
            p.id,
            p.tenant_id,
            p.requester_id,
            p.title,
            p.organizer,
            p.starts_at,
            p.ends_at,
            p.expected_attendees,
            p.facilities,
            p.remarks,
            p.status,
            p.final_comment,
            p.version,
            p.created_at,
            p.updated_at
        FROM event_plans p`

	planCountQuery = `SELECT COUNT(p.id) FROM event_plans p`

	planInsertQuery = `
        INSERT INTO event_plans (
            tenant_id, requester_id, title, organizer, starts_at, ends_at,
            expected_attendees, facilities, remarks, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at, version`

	planUpdateQuery = `
        UPDATE event_plans SET
            title = $1,
            organizer = $2,
            starts_at = $3,
            ends_at = $4,
            expected_attendees = $5,
            facilities = $6,
            remarks = $7,
            status = $8,
            final_comment = $9,
            version = version + 1,
            updated_at = NOW()
        WHERE id = $10 AND tenant_id = $11 AND version = $12
        RETURNING version, updated_at`
)

type PgPlanRepository struct{}

func NewPlanRepository() plan.Repository {
	return &PgPlanRepository{}
}

func (g *PgPlanRepository) Create(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	facilities, err := encodeFacilities(p.Facilities)
	if err != nil {
		return nil, err
	}

	out := *p
	out.TenantID = tenantID
	if err := tx.QueryRow(ctx, planInsertQuery,
		tenantID,
		p.RequesterID,
		p.Title,
		p.Organizer,
		p.StartsAt,
		p.EndsAt,
		p.ExpectedAttendees,
		facilities,
		p.Remarks,
		string(p.Status),
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.Version); err != nil {
		return nil, errors.Wrap(err, "failed to create event plan")
	}
	return &out, nil
}

func (g *PgPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return g.getOne(ctx, id, "")
}

func (g *PgPlanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return g.getOne(ctx, id, " FOR UPDATE")
}

func (g *PgPlanRepository) getOne(ctx context.Context, id uuid.UUID, suffix string) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, planFindQuery+` WHERE p.id = $1 AND p.tenant_id = $2`+suffix, id, tenantID)
	p, err := scanPlan(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return p, nil
}

func (g *PgPlanRepository) List(ctx context.Context, params *plan.FindParams) ([]*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args, err := buildPlanFilters(ctx, params)
	if err != nil {
		return nil, err
	}

	query := planFindQuery + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY p.created_at DESC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (g *PgPlanRepository) Count(ctx context.Context, params *plan.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args, err := buildPlanFilters(ctx, params)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, planCountQuery+` WHERE `+strings.Join(where, " AND "), args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (g *PgPlanRepository) Update(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	facilities, err := encodeFacilities(p.Facilities)
	if err != nil {
		return nil, err
	}

	out := *p
	err = tx.QueryRow(ctx, planUpdateQuery,
		p.Title,
		p.Organizer,
		p.StartsAt,
		p.EndsAt,
		p.ExpectedAttendees,
		facilities,
		p.Remarks,
		string(p.Status),
		p.FinalComment,
		p.ID,
		tenantID,
		p.Version,
	).Scan(&out.Version, &out.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			// Either the row is gone or the version check failed.
			if _, getErr := g.GetByID(ctx, p.ID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrPlanVersionStale
		}
		return nil, errors.Wrap(err, "failed to update event plan")
	}
	return &out, nil
}

func (g *PgPlanRepository) ListPendingForRole(ctx context.Context, role string) ([]*plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := planFindQuery + `
        WHERE p.tenant_id = $1
          AND p.status IN ('submitted', 'forwarded_to_service_provider')
          AND NOT EXISTS (
              SELECT 1 FROM approval_letters l
              WHERE l.tenant_id = p.tenant_id
                AND l.plan_id = p.id
                AND l.role = $2
                AND NOT l.superseded
          )
        ORDER BY p.created_at`

	rows, err := tx.Query(ctx, query, tenantID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func buildPlanFilters(ctx context.Context, params *plan.FindParams) ([]string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get tenant from context")
	}

	where := []string{"p.tenant_id = $1"}
	args := []interface{}{tenantID}

	if params == nil {
		return where, args, nil
	}

	if len(params.Statuses) > 0 {
		statuses := make([]string, len(params.Statuses))
		for i, s := range params.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("p.status = ANY($%d)", len(args)))
	}
	if params.RequesterID != nil {
		args = append(args, *params.RequesterID)
		where = append(where, fmt.Sprintf("p.requester_id = $%d", len(args)))
	}
	return where, args, nil
}

func scanPlan(row pgx.Row) (*plan.Plan, error) {
	var m models.EventPlan
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.RequesterID,
		&m.Title,
		&m.Organizer,
		&m.StartsAt,
		&m.EndsAt,
		&m.ExpectedAttendees,
		&m.Facilities,
		&m.Remarks,
		&m.Status,
		&m.FinalComment,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainPlan(&m)
}
