package persistence

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
	"github.com/campus-hq/venue-portal/modules/notification/infrastructure/persistence/models"
	"github.com/campus-hq/venue-portal/pkg/composables"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

const (
	notificationFindQuery = `
        SELECT
            n.id,
            n.tenant_id,
            n.recipient_id,
            n.category,
            n.title,
            n.message,
            n.metadata,
            n.read,
            n.read_at,
            n.created_at
        FROM notifications n`

	notificationInsertQuery = `
        INSERT INTO notifications (
            tenant_id, recipient_id, category, title, message, metadata
        ) VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	notificationCountUnreadQuery = `
        SELECT COUNT(*) FROM notifications
        WHERE tenant_id = $1 AND recipient_id = $2 AND NOT read`

	notificationMarkReadQuery = `
        UPDATE notifications
        SET read = TRUE, read_at = NOW()
        WHERE id = $1 AND tenant_id = $2 AND NOT read`

	notificationMarkAllReadQuery = `
        UPDATE notifications
        SET read = TRUE, read_at = NOW()
        WHERE tenant_id = $1 AND recipient_id = $2 AND NOT read`
)

type PgNotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &PgNotificationRepository{}
}

func (g *PgNotificationRepository) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode notification metadata")
	}

	out := *n
	out.TenantID = tenantID
	out.Read = false
	if err := tx.QueryRow(ctx, notificationInsertQuery,
		tenantID,
		n.RecipientID,
		string(n.Category),
		n.Title,
		n.Message,
		metadata,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to insert notification")
	}
	return &out, nil
}

func (g *PgNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := scanNotification(tx.QueryRow(ctx, notificationFindQuery+` WHERE n.id = $1 AND n.tenant_id = $2`, id, tenantID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (g *PgNotificationRepository) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := notificationFindQuery + ` WHERE n.tenant_id = $1 AND n.recipient_id = $2`
	args := []interface{}{tenantID, params.RecipientID}
	if params.UnreadOnly {
		query += ` AND NOT n.read`
	}
	if params.Category != nil {
		args = append(args, string(*params.Category))
		query += fmt.Sprintf(` AND n.category = $%d`, len(args))
	}
	query += ` ORDER BY n.created_at DESC`

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

func (g *PgNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, notificationCountUnreadQuery, tenantID, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (g *PgNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, notificationMarkReadQuery, id, tenantID); err != nil {
		return nil, err
	}
	return g.GetByID(ctx, id)
}

func (g *PgNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, notificationMarkAllReadQuery, tenantID, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var m models.Notification
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.RecipientID,
		&m.Category,
		&m.Title,
		&m.Message,
		&m.Metadata,
		&m.Read,
		&m.ReadAt,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainNotification(&m)
}
