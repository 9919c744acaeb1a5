package release

import (
	"time"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
)

// Bundle is the released package of externally-signed documents sent back to
// the requester. At most one bundle exists per plan.
type Bundle struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	PlanID     uuid.UUID
	Documents  map[letter.Role][]byte
	ReleasedBy uuid.UUID
	ReleasedAt time.Time
}
