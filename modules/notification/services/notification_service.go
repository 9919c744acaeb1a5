package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/serrors"
)

var ErrInvalidCategory = serrors.NewError("NOTIFICATION_INVALID_CATEGORY", "unknown notification category")

type NotificationService struct {
	repo notification.Repository
}

func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	if !n.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*notification.Notification, error) {
		return s.repo.Create(txCtx, n)
	})
}

func (s *NotificationService) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*notification.Notification, error) {
		return s.repo.List(txCtx, params)
	})
}

func (s *NotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.CountUnread(txCtx, recipientID)
	})
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*notification.Notification, error) {
		return s.repo.MarkRead(txCtx, id)
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.MarkAllRead(txCtx, recipientID)
	})
}
