package models

import (
	"time"

	"github.com/google/uuid"
)

type EventPlan struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	RequesterID       uuid.UUID
	Title             string
	Organizer         string
	StartsAt          time.Time
	EndsAt            time.Time
	ExpectedAttendees int
	Facilities        []byte
	Remarks           string
	Status            string
	FinalComment      *string
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ApprovalLetter struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	PlanID         uuid.UUID
	Role           string
	Kind           string
	Document       []byte
	Comment        *string
	DeliveryStatus string
	SentAt         *time.Time
	ReceivedAt     *time.Time
	Superseded     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ReleaseBundle struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	PlanID     uuid.UUID
	Documents  []byte
	ReleasedBy uuid.UUID
	ReleasedAt time.Time
}
