package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/pkg/serrors"
)

func newReleaseFixture() (*ReleaseService, *mockPlanRepo, *mockReleaseRepo, *recordingPublisher) {
	plans := newMockPlanRepo()
	releases := newMockReleaseRepo()
	publisher := &recordingPublisher{}
	return NewReleaseService(releases, plans, publisher, time.Hour), plans, releases, publisher
}

func fullBundle() map[letter.Role][]byte {
	docs := make(map[letter.Role][]byte)
	for _, role := range letter.RequiredRoles() {
		docs[role] = []byte("signed " + string(role))
	}
	return docs
}

func TestReleaseService_Release(t *testing.T) {
	svc, plans, _, publisher := newReleaseFixture()
	p := seedPlan(plans, plan.StatusApproved)

	bundle, err := svc.Release(testContext(), p.ID, fullBundle())
	require.NoError(t, err)
	require.Equal(t, p.ID, bundle.PlanID)
	require.Equal(t, testUserID, bundle.ReleasedBy)
	require.Len(t, bundle.Documents, len(letter.RequiredRoles()))
	require.Len(t, publisher.events, 1)
	require.IsType(t, &release.ReleasedEvent{}, publisher.events[0])
}

func TestReleaseService_ReleaseRequiresApprovedPlan(t *testing.T) {
	svc, plans, releases, _ := newReleaseFixture()
	p := seedPlan(plans, plan.StatusSubmitted)

	_, err := svc.Release(testContext(), p.ID, fullBundle())
	require.ErrorIs(t, err, ErrPlanNotApproved)

	exists, err := releases.ExistsForPlan(testContext(), p.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestReleaseService_ReleaseAllOrNothing(t *testing.T) {
	svc, plans, releases, publisher := newReleaseFixture()
	p := seedPlan(plans, plan.StatusApproved)

	docs := fullBundle()
	delete(docs, letter.RoleStudentUnion)

	_, err := svc.Release(testContext(), p.ID, docs)
	require.ErrorIs(t, err, ErrReleaseIncomplete)

	var base *serrors.BaseError
	require.True(t, errors.As(err, &base))
	require.Equal(t, "student-union", base.TemplateData["missing_roles"])

	exists, err := releases.ExistsForPlan(testContext(), p.ID)
	require.NoError(t, err)
	require.False(t, exists, "a partial bundle must release nothing")
	require.Empty(t, publisher.events)
}

func TestReleaseService_ReleaseTwice(t *testing.T) {
	svc, plans, _, _ := newReleaseFixture()
	p := seedPlan(plans, plan.StatusApproved)

	_, err := svc.Release(testContext(), p.ID, fullBundle())
	require.NoError(t, err)

	_, err = svc.Release(testContext(), p.ID, fullBundle())
	require.ErrorIs(t, err, ErrAlreadyReleased)
}

func TestReleaseService_Staging(t *testing.T) {
	svc, plans, _, _ := newReleaseFixture()
	p := seedPlan(plans, plan.StatusApproved)

	require.ErrorIs(t, svc.StageDocument(p.ID, "dean", []byte("x")), ErrInvalidRole)
	require.ErrorIs(t, svc.StageDocument(p.ID, letter.RoleWarden, nil), ErrEmptyDocument)

	for _, role := range letter.RequiredRoles() {
		require.NoError(t, svc.StageDocument(p.ID, role, []byte("signed "+string(role))))
	}
	require.Len(t, svc.StagedRoles(p.ID), len(letter.RequiredRoles()))

	bundle, err := svc.ReleaseStaged(testContext(), p.ID)
	require.NoError(t, err)
	require.Len(t, bundle.Documents, len(letter.RequiredRoles()))

	// staging is cleared after a successful release
	require.Empty(t, svc.StagedRoles(p.ID))
}

func TestReleaseService_ReleaseStagedIncomplete(t *testing.T) {
	svc, plans, _, _ := newReleaseFixture()
	p := seedPlan(plans, plan.StatusApproved)

	require.NoError(t, svc.StageDocument(p.ID, letter.RoleWarden, []byte("signed")))

	_, err := svc.ReleaseStaged(testContext(), p.ID)
	require.ErrorIs(t, err, ErrReleaseIncomplete)

	// failed release keeps the staged document around
	require.Equal(t, []letter.Role{letter.RoleWarden}, svc.StagedRoles(p.ID))
}

func TestStagingStoreExpiry(t *testing.T) {
	store := newStagingStore(time.Millisecond)
	planID := seedPlan(newMockPlanRepo(), plan.StatusApproved).ID

	store.put(planID, letter.RoleWarden, []byte("signed"))
	time.Sleep(5 * time.Millisecond)
	require.Nil(t, store.get(planID))
}

func TestReleaseService_DiscardStaged(t *testing.T) {
	svc, plans, _, _ := newReleaseFixture()
	p := seedPlan(plans, plan.StatusApproved)

	require.NoError(t, svc.StageDocument(p.ID, letter.RoleWarden, []byte("signed")))
	svc.DiscardStaged(p.ID)
	require.Empty(t, svc.StagedRoles(p.ID))
}
