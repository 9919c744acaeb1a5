package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/eventbus"
)

type LetterService struct {
	repo      letter.Repository
	plans     plan.Repository
	publisher eventbus.EventBus
}

func NewLetterService(repo letter.Repository, plans plan.Repository, publisher eventbus.EventBus) *LetterService {
	return &LetterService{
		repo:      repo,
		plans:     plans,
		publisher: publisher,
	}
}

type RecordDecisionDTO struct {
	PlanID   uuid.UUID
	Role     letter.Role
	Kind     letter.Kind
	Document []byte
	Comment  *string
}

// RecordDecision writes a decision letter into the ledger. A repeated
// decision from the same role replaces the previous one (the old letter is
// kept, marked superseded). Decisions are refused once the plan is terminal.
func (s *LetterService) RecordDecision(ctx context.Context, data *RecordDecisionDTO) (*letter.Letter, error) {
	if !data.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if !data.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	// A rejection may arrive as a bare comment; an approval must carry the
	// signed document.
	if data.Kind == letter.KindApproval && len(data.Document) == 0 {
		return nil, ErrEmptyDocument
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*letter.Letter, error) {
		entity, err := s.plans.GetByIDForUpdate(txCtx, data.PlanID)
		if err != nil {
			return nil, err
		}
		if entity.Status == plan.StatusDraft || entity.Status.IsTerminal() {
			return nil, ErrInvalidTransition
		}

		created, err := s.repo.Upsert(txCtx, &letter.Letter{
			PlanID:   data.PlanID,
			Role:     data.Role,
			Kind:     data.Kind,
			Document: data.Document,
			Comment:  data.Comment,
		})
		if err != nil {
			return nil, err
		}
		ev, err := letter.NewDecisionRecordedEvent(txCtx, entity.RequesterID, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

// ListActive returns the current (non-superseded) letters for a plan.
func (s *LetterService) ListActive(ctx context.Context, planID uuid.UUID) ([]*letter.Letter, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*letter.Letter, error) {
		return s.repo.ListActiveByPlan(txCtx, planID)
	})
}

func (s *LetterService) GetByID(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*letter.Letter, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// MarkSent records that the physical document left the registry. Only a
// drafted letter can be marked sent.
func (s *LetterService) MarkSent(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*letter.Letter, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if current.DeliveryStatus != letter.DeliveryDrafted {
			return nil, ErrInvalidDelivery
		}
		updated, err := s.repo.MarkSent(txCtx, id)
		if errors.Is(err, persistence.ErrLetterDeliveryConflict) {
			return nil, ErrInvalidDelivery
		}
		return updated, err
	})
}

// MarkReceived confirms delivery. A letter that was never sent cannot be
// received.
func (s *LetterService) MarkReceived(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*letter.Letter, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if current.DeliveryStatus != letter.DeliverySent {
			return nil, ErrInvalidDelivery
		}
		updated, err := s.repo.MarkReceived(txCtx, id)
		if errors.Is(err, persistence.ErrLetterDeliveryConflict) {
			return nil, ErrInvalidDelivery
		}
		return updated, err
	})
}
