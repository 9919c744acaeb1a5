package plan

import (
	"context"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/pkg/composables"
)

// SubmittedEvent is published when a draft plan enters the approval pipeline.
type SubmittedEvent struct {
	ActorID uuid.UUID
	Result  Plan
}

func NewSubmittedEvent(ctx context.Context, result *Plan) (*SubmittedEvent, error) {
	actorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &SubmittedEvent{
		ActorID: actorID,
		Result:  *result,
	}, nil
}

// ForwardedEvent is published when a plan is routed to the service-provider
// track. Not published on idempotent re-forwards.
type ForwardedEvent struct {
	ActorID uuid.UUID
	Result  Plan
}

func NewForwardedEvent(ctx context.Context, result *Plan) (*ForwardedEvent, error) {
	actorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &ForwardedEvent{
		ActorID: actorID,
		Result:  *result,
	}, nil
}

// FinalizedEvent is published exactly once per plan, when an administrator
// records the terminal decision.
type FinalizedEvent struct {
	ActorID uuid.UUID
	Result  Plan
}

func NewFinalizedEvent(ctx context.Context, result *Plan) (*FinalizedEvent, error) {
	actorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &FinalizedEvent{
		ActorID: actorID,
		Result:  *result,
	}, nil
}
