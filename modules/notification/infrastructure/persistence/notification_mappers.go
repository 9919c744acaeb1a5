package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
	"github.com/campus-hq/venue-portal/modules/notification/infrastructure/persistence/models"
)

func toDomainNotification(m *models.Notification) (*notification.Notification, error) {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, errors.Wrap(err, "failed to decode notification metadata")
		}
	}
	return &notification.Notification{
		ID:          m.ID,
		TenantID:    m.TenantID,
		RecipientID: m.RecipientID,
		Category:    notification.Category(m.Category),
		Title:       m.Title,
		Message:     m.Message,
		Metadata:    metadata,
		Read:        m.Read,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}, nil
}
