package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	RecipientID uuid.UUID
	Category    string
	Title       string
	Message     string
	Metadata    []byte
	Read        bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
