package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/modules/approval/domain/completeness"
	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/eventbus"
	"github.com/campus-hq/venue-portal/pkg/serrors"
)

var validate = validator.New()

type PlanService struct {
	repo      plan.Repository
	letters   letter.Repository
	publisher eventbus.EventBus
}

func NewPlanService(repo plan.Repository, letters letter.Repository, publisher eventbus.EventBus) *PlanService {
	return &PlanService{
		repo:      repo,
		letters:   letters,
		publisher: publisher,
	}
}

type CreatePlanDTO struct {
	Title             string    `json:"title" validate:"required,max=255"`
	Organizer         string    `json:"organizer" validate:"required,max=255"`
	StartsAt          time.Time `json:"starts_at" validate:"required"`
	EndsAt            time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	ExpectedAttendees int       `json:"expected_attendees" validate:"gte=0"`
	Facilities        []string  `json:"facilities"`
	Remarks           string    `json:"remarks"`
}

func (s *PlanService) Create(ctx context.Context, data *CreatePlanDTO) (*plan.Plan, error) {
	if err := validate.Struct(data); err != nil {
		return nil, err
	}
	if err := plan.ValidateFacilities(data.Facilities); err != nil {
		return nil, serrors.NewError("APPROVAL_INVALID_FACILITIES", err.Error())
	}
	requesterID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}

	entity := &plan.Plan{
		RequesterID:       requesterID,
		Title:             data.Title,
		Organizer:         data.Organizer,
		StartsAt:          data.StartsAt,
		EndsAt:            data.EndsAt,
		ExpectedAttendees: data.ExpectedAttendees,
		Facilities:        data.Facilities,
		Remarks:           data.Remarks,
		Status:            plan.StatusDraft,
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		return s.repo.Create(txCtx, entity)
	})
}

func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *PlanService) List(ctx context.Context, params *plan.FindParams) ([]*plan.Plan, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*plan.Plan, error) {
		return s.repo.List(txCtx, params)
	})
}

func (s *PlanService) Count(ctx context.Context, params *plan.FindParams) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx, params)
	})
}

// Submit moves a draft plan into the approval pipeline.
func (s *PlanService) Submit(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		entity, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return nil, err
		}
		if entity.Status != plan.StatusDraft {
			return nil, ErrInvalidTransition
		}
		entity.Status = plan.StatusSubmitted
		updated, err := s.repo.Update(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := plan.NewSubmittedEvent(txCtx, updated)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return updated, nil
	})
}

// Forward routes the plan to the service-provider track. Re-forwarding an
// already-forwarded plan is a no-op success so concurrent admin clicks
// cannot double-forward.
func (s *PlanService) Forward(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		entity, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return nil, err
		}
		if entity.Status == plan.StatusForwarded {
			return entity, nil
		}
		if !entity.Status.CanForward() {
			return nil, ErrInvalidTransition
		}
		entity.Status = plan.StatusForwarded
		updated, err := s.repo.Update(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := plan.NewForwardedEvent(txCtx, updated)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return updated, nil
	})
}

// Finalize records the terminal decision. Approval demands a fully satisfied
// completeness snapshot; rejection demands a comment. The plan row stays
// locked for the whole read-check-write, so of two racing finalize calls the
// second observes the terminal status.
func (s *PlanService) Finalize(ctx context.Context, id uuid.UUID, outcome plan.Status, comment string) (*plan.Plan, error) {
	if outcome != plan.StatusApproved && outcome != plan.StatusRejected {
		return nil, ErrInvalidTransition
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		entity, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return nil, err
		}
		if entity.Status.IsTerminal() {
			return nil, ErrAlreadyFinalized
		}
		if !entity.Status.CanFinalize() {
			return nil, ErrInvalidTransition
		}

		switch outcome {
		case plan.StatusApproved:
			letters, err := s.letters.ListActiveByPlan(txCtx, id)
			if err != nil {
				return nil, err
			}
			snapshot := completeness.Compute(entity.Status, letters)
			if !snapshot.ReadyForApproval {
				return nil, incompleteApprovalsError(snapshot.MissingRoles())
			}
		case plan.StatusRejected:
			if comment == "" {
				return nil, ErrCommentRequired
			}
		}

		entity.Status = outcome
		if comment != "" {
			entity.FinalComment = &comment
		}
		updated, err := s.repo.Update(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := plan.NewFinalizedEvent(txCtx, updated)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return updated, nil
	})
}

// Snapshot exposes the aggregator state for a plan. The same computation
// guards Finalize and the release gate.
func (s *PlanService) Snapshot(ctx context.Context, id uuid.UUID) (completeness.Snapshot, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (completeness.Snapshot, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return completeness.Snapshot{}, err
		}
		letters, err := s.letters.ListActiveByPlan(txCtx, id)
		if err != nil {
			return completeness.Snapshot{}, err
		}
		return completeness.Compute(entity.Status, letters), nil
	})
}

// PendingForRole lists the plans still awaiting a decision from the given
// role, derived solely from ledger state.
func (s *PlanService) PendingForRole(ctx context.Context, role letter.Role) ([]*plan.Plan, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*plan.Plan, error) {
		return s.repo.ListPendingForRole(txCtx, string(role))
	})
}
