package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
)

func newLetterFixture() (*LetterService, *mockPlanRepo, *mockLetterRepo, *recordingPublisher) {
	plans := newMockPlanRepo()
	letters := &mockLetterRepo{}
	publisher := &recordingPublisher{}
	return NewLetterService(letters, plans, publisher), plans, letters, publisher
}

func TestLetterService_RecordDecision(t *testing.T) {
	svc, plans, _, publisher := newLetterFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	created, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID:   p.ID,
		Role:     letter.RoleWarden,
		Kind:     letter.KindApproval,
		Document: []byte("%PDF-1.7 signed"),
	})
	require.NoError(t, err)
	require.Equal(t, letter.DeliveryDrafted, created.DeliveryStatus)
	require.False(t, created.Superseded)
	require.Len(t, publisher.events, 1)

	ev, ok := publisher.events[0].(*letter.DecisionRecordedEvent)
	require.True(t, ok)
	require.Equal(t, p.RequesterID, ev.RequesterID)
	require.Equal(t, testUserID, ev.ActorID)
}

func TestLetterService_RecordDecisionReplacesPrior(t *testing.T) {
	svc, plans, letters, _ := newLetterFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	first, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindRejection, Document: []byte("v1"),
	})
	require.NoError(t, err)

	second, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: []byte("v2"),
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	active, err := letters.ListActiveByPlan(testContext(), p.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, second.ID, active[0].ID)
	require.Equal(t, letter.KindApproval, active[0].Kind)
}

func TestLetterService_RecordDecisionValidation(t *testing.T) {
	svc, plans, _, _ := newLetterFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	_, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: "dean", Kind: letter.KindApproval, Document: []byte("x"),
	})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: "maybe", Document: []byte("x"),
	})
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval,
	})
	require.ErrorIs(t, err, ErrEmptyDocument)

	// a rejection does not need a signed document
	_, err = svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindRejection,
	})
	require.NoError(t, err)
}

func TestLetterService_RecordDecisionOnTerminalPlan(t *testing.T) {
	svc, plans, _, _ := newLetterFixture()
	p := seedPlan(plans, plan.StatusRejected)

	_, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: []byte("x"),
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLetterService_RecordDecisionOnDraft(t *testing.T) {
	svc, plans, _, _ := newLetterFixture()
	p := seedPlan(plans, plan.StatusDraft)

	_, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: []byte("x"),
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLetterService_DocumentBytesUntouched(t *testing.T) {
	svc, plans, letters, _ := newLetterFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	raw := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF, 0xFE, 0x22, 0x5C}
	created, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: raw,
	})
	require.NoError(t, err)
	require.Equal(t, raw, created.Document)

	stored, err := letters.GetByID(testContext(), created.ID)
	require.NoError(t, err)
	require.Equal(t, raw, stored.Document)
}

func TestLetterService_DeliveryOrdering(t *testing.T) {
	svc, plans, _, _ := newLetterFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	created, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: []byte("x"),
	})
	require.NoError(t, err)

	// received before sent is refused
	_, err = svc.MarkReceived(testContext(), created.ID)
	require.ErrorIs(t, err, ErrInvalidDelivery)

	sent, err := svc.MarkSent(testContext(), created.ID)
	require.NoError(t, err)
	require.Equal(t, letter.DeliverySent, sent.DeliveryStatus)

	// double sent is refused
	_, err = svc.MarkSent(testContext(), created.ID)
	require.ErrorIs(t, err, ErrInvalidDelivery)

	received, err := svc.MarkReceived(testContext(), created.ID)
	require.NoError(t, err)
	require.Equal(t, letter.DeliveryReceived, received.DeliveryStatus)
}

// staleReadLetterRepo serves a frozen copy on reads while delegating writes,
// standing in for a second caller that advanced the row after our read.
type staleReadLetterRepo struct {
	letter.Repository
	stale *letter.Letter
}

func (r *staleReadLetterRepo) GetByID(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	cp := *r.stale
	return &cp, nil
}

func TestLetterService_MarkReceivedLosesConcurrentRace(t *testing.T) {
	plans := newMockPlanRepo()
	letters := &mockLetterRepo{}
	publisher := &recordingPublisher{}
	p := seedPlan(plans, plan.StatusSubmitted)

	svc := NewLetterService(letters, plans, publisher)
	created, err := svc.RecordDecision(testContext(), &RecordDecisionDTO{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: []byte("x"),
	})
	require.NoError(t, err)

	_, err = svc.MarkSent(testContext(), created.ID)
	require.NoError(t, err)
	_, err = svc.MarkReceived(testContext(), created.ID)
	require.NoError(t, err)

	// This caller still sees the letter as sent, but the row has already
	// moved on. The repository refuses the write and the service reports
	// the same invalid transition it would for an ordinary replay.
	staleCopy := *created
	staleCopy.DeliveryStatus = letter.DeliverySent
	stale := NewLetterService(&staleReadLetterRepo{Repository: letters, stale: &staleCopy}, plans, publisher)
	_, err = stale.MarkReceived(testContext(), created.ID)
	require.ErrorIs(t, err, ErrInvalidDelivery)
}
