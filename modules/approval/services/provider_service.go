package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
)

// ProviderService is the service-provider facing slice of the workflow. The
// provider never sees the whole ledger, only its own queue and decisions.
type ProviderService struct {
	plans   *PlanService
	letters *LetterService
}

func NewProviderService(plans *PlanService, letters *LetterService) *ProviderService {
	return &ProviderService{plans: plans, letters: letters}
}

// Forward hands a submitted plan to the provider track. Safe to repeat, the
// underlying transition is idempotent.
func (s *ProviderService) Forward(ctx context.Context, planID uuid.UUID) (*plan.Plan, error) {
	return s.plans.Forward(ctx, planID)
}

// Queue lists the plans still awaiting a provider decision. The filter is
// derived from ledger state, so a recorded decision removes the plan from
// the queue without any separate flag.
func (s *ProviderService) Queue(ctx context.Context) ([]*plan.Plan, error) {
	return s.plans.PendingForRole(ctx, letter.RoleServiceProvider)
}

type ProviderDecisionDTO struct {
	PlanID   uuid.UUID
	Kind     letter.Kind
	Document []byte
	Comment  *string
}

// Decide records the provider's feasibility verdict. The role is fixed; a
// provider cannot impersonate an authority.
func (s *ProviderService) Decide(ctx context.Context, data *ProviderDecisionDTO) (*letter.Letter, error) {
	return s.letters.RecordDecision(ctx, &RecordDecisionDTO{
		PlanID:   data.PlanID,
		Role:     letter.RoleServiceProvider,
		Kind:     data.Kind,
		Document: data.Document,
		Comment:  data.Comment,
	})
}
