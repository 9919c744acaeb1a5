package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	List(ctx context.Context, params *FindParams) ([]*Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}
