package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
	"github.com/campus-hq/venue-portal/modules/notification/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/pkg/composables"
)

type stubTx struct{}

func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

var testRecipientID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

func testContext() context.Context {
	ctx := composables.WithTx(context.Background(), stubTx{})
	return composables.WithTenantID(ctx, uuid.MustParse("11111111-1111-1111-1111-111111111111"))
}

type mockNotificationRepo struct {
	items []*notification.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	cp := *n
	cp.ID = uuid.New()
	m.items = append(m.items, &cp)
	out := cp
	return &out, nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	for _, n := range m.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, persistence.ErrNotificationNotFound
}

func (m *mockNotificationRepo) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range m.items {
		if n.RecipientID != params.RecipientID {
			continue
		}
		if params.UnreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	for _, n := range m.items {
		if n.ID == id {
			n.Read = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, persistence.ErrNotificationNotFound
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var updated int64
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func TestNotificationService_CreateRejectsUnknownCategory(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo)

	_, err := svc.Create(testContext(), &notification.Notification{
		RecipientID: testRecipientID,
		Category:    "newsletter",
	})
	require.ErrorIs(t, err, ErrInvalidCategory)
	require.Empty(t, repo.items)
}

func TestNotificationService_ReadFlow(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo)

	first, err := svc.Create(testContext(), &notification.Notification{
		RecipientID: testRecipientID,
		Category:    notification.CategoryRequestSubmitted,
		Title:       "Plan submitted",
	})
	require.NoError(t, err)

	_, err = svc.Create(testContext(), &notification.Notification{
		RecipientID: testRecipientID,
		Category:    notification.CategoryFinalDecision,
		Title:       "Plan approved",
	})
	require.NoError(t, err)

	count, err := svc.CountUnread(testContext(), testRecipientID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	read, err := svc.MarkRead(testContext(), first.ID)
	require.NoError(t, err)
	require.True(t, read.Read)

	unread, err := svc.List(testContext(), &notification.FindParams{
		RecipientID: testRecipientID,
		UnreadOnly:  true,
	})
	require.NoError(t, err)
	require.Len(t, unread, 1)

	updated, err := svc.MarkAllRead(testContext(), testRecipientID)
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)

	count, err = svc.CountUnread(testContext(), testRecipientID)
	require.NoError(t, err)
	require.Zero(t, count)
}
