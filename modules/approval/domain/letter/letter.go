package letter

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who issued a decision letter. The four authority roles are
// all mandatory for final approval; service-provider runs on its own track.
type Role string

const (
	RoleViceChancellor  Role = "vice-chancellor"
	RoleWarden          Role = "warden"
	RoleAdministration  Role = "administration"
	RoleStudentUnion    Role = "student-union"
	RoleServiceProvider Role = "service-provider"
)

func (r Role) Valid() bool {
	switch r {
	case RoleViceChancellor, RoleWarden, RoleAdministration, RoleStudentUnion, RoleServiceProvider:
		return true
	}
	return false
}

// RequiredRoles returns the authority roles whose approval is mandatory, in
// stable order.
func RequiredRoles() []Role {
	return []Role{RoleViceChancellor, RoleWarden, RoleAdministration, RoleStudentUnion}
}

type Kind string

const (
	KindApproval  Kind = "approval"
	KindRejection Kind = "rejection"
)

func (k Kind) Valid() bool {
	return k == KindApproval || k == KindRejection
}

// DeliveryStatus tracks the out-of-band delivery of the signed document. The
// enumeration is closed on purpose: no NULL or empty-string "unset" state.
type DeliveryStatus string

const (
	DeliveryDrafted  DeliveryStatus = "drafted"
	DeliverySent     DeliveryStatus = "sent"
	DeliveryReceived DeliveryStatus = "received"
)

func (d DeliveryStatus) Valid() bool {
	return d == DeliveryDrafted || d == DeliverySent || d == DeliveryReceived
}

// Letter is a recorded authority decision. Document is the signed PDF as
// opaque bytes; it is never transformed, re-encoded or escaped anywhere in
// the pipeline.
type Letter struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	PlanID         uuid.UUID
	Role           Role
	Kind           Kind
	Document       []byte
	Comment        *string
	DeliveryStatus DeliveryStatus
	SentAt         *time.Time
	ReceivedAt     *time.Time
	Superseded     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
