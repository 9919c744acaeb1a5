package persistence

import (
	"context"
	stderrors "errors"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence/models"
	"github.com/campus-hq/venue-portal/pkg/composables"
)

var (
	ErrLetterNotFound         = errors.New("approval letter not found")
	ErrLetterDeliveryConflict = errors.New("letter delivery status changed concurrently")
)

const (
	letterFindQuery = `
        SELECT
            l.id,
            l.tenant_id,
            l.plan_id,
            l.role,
            l.kind,
            l.document,
            l.comment,
            l.delivery_status,
            l.sent_at,
            l.received_at,
            l.superseded,
            l.created_at,
            l.updated_at
        FROM approval_letters l`

	letterSupersedeQuery = `
        UPDATE approval_letters
        SET superseded = TRUE, updated_at = NOW()
        WHERE tenant_id = $1 AND plan_id = $2 AND role = $3 AND NOT superseded`

	letterInsertQuery = `
        INSERT INTO approval_letters (
            tenant_id, plan_id, role, kind, document, comment, delivery_status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	letterMarkSentQuery = `
        UPDATE approval_letters
        SET delivery_status = $1, sent_at = NOW(), updated_at = NOW()
        WHERE id = $2 AND tenant_id = $3 AND delivery_status = $4`

	letterMarkReceivedQuery = `
        UPDATE approval_letters
        SET delivery_status = $1, received_at = NOW(), updated_at = NOW()
        WHERE id = $2 AND tenant_id = $3 AND delivery_status = $4`
)

type PgLetterRepository struct{}

func NewLetterRepository() letter.Repository {
	return &PgLetterRepository{}
}

func (g *PgLetterRepository) Upsert(ctx context.Context, l *letter.Letter) (*letter.Letter, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, letterSupersedeQuery, tenantID, l.PlanID, string(l.Role)); err != nil {
		return nil, errors.Wrap(err, "failed to supersede prior letter")
	}

	document := l.Document
	if document == nil {
		document = []byte{}
	}

	out := *l
	out.TenantID = tenantID
	out.Document = document
	out.DeliveryStatus = letter.DeliveryDrafted
	out.Superseded = false
	if err := tx.QueryRow(ctx, letterInsertQuery,
		tenantID,
		l.PlanID,
		string(l.Role),
		string(l.Kind),
		document,
		l.Comment,
		string(letter.DeliveryDrafted),
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to record letter")
	}
	return &out, nil
}

func (g *PgLetterRepository) GetByID(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	l, err := scanLetter(tx.QueryRow(ctx, letterFindQuery+` WHERE l.id = $1 AND l.tenant_id = $2`, id, tenantID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLetterNotFound
		}
		return nil, err
	}
	return l, nil
}

func (g *PgLetterRepository) ListActiveByPlan(ctx context.Context, planID uuid.UUID) ([]*letter.Letter, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx,
		letterFindQuery+` WHERE l.tenant_id = $1 AND l.plan_id = $2 AND NOT l.superseded ORDER BY l.role`,
		tenantID, planID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*letter.Letter
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

func (g *PgLetterRepository) MarkSent(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	return g.markDelivery(ctx, id, letterMarkSentQuery, letter.DeliveryDrafted, letter.DeliverySent)
}

func (g *PgLetterRepository) MarkReceived(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	return g.markDelivery(ctx, id, letterMarkReceivedQuery, letter.DeliverySent, letter.DeliveryReceived)
}

// markDelivery pins the expected prior status in the UPDATE itself, so a
// concurrent transition loses the race at the row instead of both writers
// passing a stale read.
func (g *PgLetterRepository) markDelivery(ctx context.Context, id uuid.UUID, query string, from, to letter.DeliveryStatus) (*letter.Letter, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, query, string(to), id, tenantID, string(from))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := g.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrLetterDeliveryConflict
	}
	return g.GetByID(ctx, id)
}

func scanLetter(row pgx.Row) (*letter.Letter, error) {
	var m models.ApprovalLetter
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.PlanID,
		&m.Role,
		&m.Kind,
		&m.Document,
		&m.Comment,
		&m.DeliveryStatus,
		&m.SentAt,
		&m.ReceivedAt,
		&m.Superseded,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainLetter(&m), nil
}
