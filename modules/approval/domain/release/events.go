package release

import (
	"context"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/pkg/composables"
)

// ReleasedEvent is published when the signed-letter bundle is delivered back
// to the requester.
type ReleasedEvent struct {
	ActorID     uuid.UUID
	RequesterID uuid.UUID
	Result      Bundle
}

func NewReleasedEvent(ctx context.Context, requesterID uuid.UUID, result *Bundle) (*ReleasedEvent, error) {
	actorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return &ReleasedEvent{
		ActorID:     actorID,
		RequesterID: requesterID,
		Result:      *result,
	}, nil
}
