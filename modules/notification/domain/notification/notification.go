package notification

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of workflow moments that produce a notification.
type Category string

const (
	CategoryRequestSubmitted       Category = "request-submitted"
	CategoryPlanForwarded          Category = "forwarded"
	CategoryAuthorityDecided       Category = "authority-decided"
	CategoryServiceProviderDecided Category = "service-provider-decided"
	CategoryFinalDecision          Category = "final-decision"
	CategoryLettersReleased        Category = "letters-released"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryRequestSubmitted, CategoryPlanForwarded, CategoryAuthorityDecided,
		CategoryServiceProviderDecided, CategoryFinalDecision, CategoryLettersReleased:
		return true
	}
	return false
}

type Notification struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	RecipientID uuid.UUID
	Category    Category
	Title       string
	Message     string
	Metadata    map[string]string
	Read        bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

type FindParams struct {
	RecipientID uuid.UUID
	UnreadOnly  bool
	Category    *Category
	Limit       int
	Offset      int
}
