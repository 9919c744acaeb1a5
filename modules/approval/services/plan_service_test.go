package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/pkg/serrors"
)

func newPlanFixture() (*PlanService, *mockPlanRepo, *mockLetterRepo, *recordingPublisher) {
	plans := newMockPlanRepo()
	letters := &mockLetterRepo{}
	publisher := &recordingPublisher{}
	return NewPlanService(plans, letters, publisher), plans, letters, publisher
}

func approveAll(t *testing.T, letters *mockLetterRepo, planID uuid.UUID) {
	t.Helper()
	for _, role := range letter.RequiredRoles() {
		_, err := letters.Upsert(testContext(), &letter.Letter{
			PlanID:   planID,
			Role:     role,
			Kind:     letter.KindApproval,
			Document: []byte("signed"),
		})
		require.NoError(t, err)
	}
}

func TestPlanService_Create(t *testing.T) {
	svc, _, _, _ := newPlanFixture()

	created, err := svc.Create(testContext(), &CreatePlanDTO{
		Title:             "Tech Symposium",
		Organizer:         "CS Society",
		StartsAt:          time.Now().Add(24 * time.Hour),
		EndsAt:            time.Now().Add(30 * time.Hour),
		ExpectedAttendees: 150,
		Facilities:        []string{"main-auditorium"},
	})
	require.NoError(t, err)
	require.Equal(t, plan.StatusDraft, created.Status)
	require.Equal(t, testUserID, created.RequesterID)
}

func TestPlanService_CreateRejectsEncodedFacilityList(t *testing.T) {
	svc, _, _, _ := newPlanFixture()

	_, err := svc.Create(testContext(), &CreatePlanDTO{
		Title:      "Tech Symposium",
		Organizer:  "CS Society",
		StartsAt:   time.Now().Add(24 * time.Hour),
		EndsAt:     time.Now().Add(30 * time.Hour),
		Facilities: []string{`["main-auditorium","sound-system"]`},
	})
	require.Error(t, err)
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "APPROVAL_INVALID_FACILITIES", base.Code)
}

func TestPlanService_Submit(t *testing.T) {
	svc, plans, _, publisher := newPlanFixture()
	p := seedPlan(plans, plan.StatusDraft)

	updated, err := svc.Submit(testContext(), p.ID)
	require.NoError(t, err)
	require.Equal(t, plan.StatusSubmitted, updated.Status)
	require.Len(t, publisher.events, 1)
	require.IsType(t, &plan.SubmittedEvent{}, publisher.events[0])
}

func TestPlanService_SubmitNonDraft(t *testing.T) {
	svc, plans, _, publisher := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	_, err := svc.Submit(testContext(), p.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, publisher.events)
}

func TestPlanService_ForwardIsIdempotent(t *testing.T) {
	svc, plans, _, publisher := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	first, err := svc.Forward(testContext(), p.ID)
	require.NoError(t, err)
	require.Equal(t, plan.StatusForwarded, first.Status)
	require.Len(t, publisher.events, 1)

	second, err := svc.Forward(testContext(), p.ID)
	require.NoError(t, err)
	require.Equal(t, plan.StatusForwarded, second.Status)
	require.Len(t, publisher.events, 1, "re-forwarding must not publish a second event")
}

func TestPlanService_ForwardDraft(t *testing.T) {
	svc, plans, _, _ := newPlanFixture()
	p := seedPlan(plans, plan.StatusDraft)

	_, err := svc.Forward(testContext(), p.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanService_FinalizeApproveIncomplete(t *testing.T) {
	svc, plans, letters, _ := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	for _, role := range []letter.Role{letter.RoleViceChancellor, letter.RoleWarden, letter.RoleAdministration} {
		_, err := letters.Upsert(testContext(), &letter.Letter{
			PlanID: p.ID, Role: role, Kind: letter.KindApproval, Document: []byte("signed"),
		})
		require.NoError(t, err)
	}

	_, err := svc.Finalize(testContext(), p.ID, plan.StatusApproved, "")
	require.ErrorIs(t, err, ErrIncompleteApprovals)

	var base *serrors.BaseError
	require.True(t, errors.As(err, &base))
	require.Equal(t, "student-union", base.TemplateData["missing_roles"])
}

func TestPlanService_FinalizeApprove(t *testing.T) {
	svc, plans, letters, publisher := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)
	approveAll(t, letters, p.ID)

	updated, err := svc.Finalize(testContext(), p.ID, plan.StatusApproved, "")
	require.NoError(t, err)
	require.Equal(t, plan.StatusApproved, updated.Status)
	require.Len(t, publisher.events, 1)
	require.IsType(t, &plan.FinalizedEvent{}, publisher.events[0])
}

func TestPlanService_FinalizeForwardedNeedsProviderApproval(t *testing.T) {
	svc, plans, letters, _ := newPlanFixture()
	p := seedPlan(plans, plan.StatusForwarded)
	approveAll(t, letters, p.ID)

	_, err := svc.Finalize(testContext(), p.ID, plan.StatusApproved, "")
	require.ErrorIs(t, err, ErrIncompleteApprovals)

	var base *serrors.BaseError
	require.True(t, errors.As(err, &base))
	require.Equal(t, "service-provider", base.TemplateData["missing_roles"])

	_, err = letters.Upsert(testContext(), &letter.Letter{
		PlanID: p.ID, Role: letter.RoleServiceProvider, Kind: letter.KindApproval, Document: []byte("signed"),
	})
	require.NoError(t, err)

	updated, err := svc.Finalize(testContext(), p.ID, plan.StatusApproved, "")
	require.NoError(t, err)
	require.Equal(t, plan.StatusApproved, updated.Status)
}

func TestPlanService_FinalizeRejectRequiresComment(t *testing.T) {
	svc, plans, _, _ := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	_, err := svc.Finalize(testContext(), p.ID, plan.StatusRejected, "")
	require.ErrorIs(t, err, ErrCommentRequired)

	updated, err := svc.Finalize(testContext(), p.ID, plan.StatusRejected, "venue unavailable")
	require.NoError(t, err)
	require.Equal(t, plan.StatusRejected, updated.Status)
	require.NotNil(t, updated.FinalComment)
	require.Equal(t, "venue unavailable", *updated.FinalComment)
}

func TestPlanService_FinalizeTerminalPlan(t *testing.T) {
	svc, plans, _, publisher := newPlanFixture()
	p := seedPlan(plans, plan.StatusApproved)

	_, err := svc.Finalize(testContext(), p.ID, plan.StatusApproved, "")
	require.ErrorIs(t, err, ErrAlreadyFinalized)
	require.Empty(t, publisher.events)
}

func TestPlanService_FinalizeInvalidOutcome(t *testing.T) {
	svc, plans, _, _ := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	_, err := svc.Finalize(testContext(), p.ID, plan.StatusSubmitted, "")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanService_Snapshot(t *testing.T) {
	svc, plans, letters, _ := newPlanFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	_, err := letters.Upsert(testContext(), &letter.Letter{
		PlanID: p.ID, Role: letter.RoleWarden, Kind: letter.KindApproval, Document: []byte("signed"),
	})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(testContext(), p.ID)
	require.NoError(t, err)
	require.False(t, snapshot.ReadyForApproval)
	require.True(t, snapshot.Authorities[letter.RoleWarden])
	require.False(t, snapshot.Authorities[letter.RoleViceChancellor])
}
