package letter

import (
	"context"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/pkg/composables"
)

// DecisionRecordedEvent is published whenever a role records (or re-records)
// a decision on a plan.
type DecisionRecordedEvent struct {
	ActorID     uuid.UUID
	RequesterID uuid.UUID
	Result      Letter
}

func NewDecisionRecordedEvent(ctx context.Context, requesterID uuid.UUID, result *Letter) (*DecisionRecordedEvent, error) {
	actorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &DecisionRecordedEvent{
		ActorID:     actorID,
		RequesterID: requesterID,
		Result:      *result,
	}, nil
}
