package plan

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusForwarded Status = "forwarded_to_service_provider"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusForwarded, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status is final. Terminal plans accept no
// further decisions or transitions.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) CanForward() bool {
	return s == StatusSubmitted
}

func (s Status) CanFinalize() bool {
	return s == StatusSubmitted || s == StatusForwarded
}

// Plan is an event plan moving through the approval workflow. Status is
// mutated only by the plan service transitions; Version backs the optimistic
// write check in the repository.
type Plan struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	RequesterID       uuid.UUID
	Title             string
	Organizer         string
	StartsAt          time.Time
	EndsAt            time.Time
	ExpectedAttendees int
	Facilities        []string
	Remarks           string
	Status            Status
	FinalComment      *string
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type FindParams struct {
	Statuses    []Status
	RequesterID *uuid.UUID
	Limit       int
	Offset      int
}
