package persistence

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence/models"
)

func toDomainPlan(row *models.EventPlan) (*plan.Plan, error) {
	var facilities []string
	if len(row.Facilities) > 0 {
		if err := json.Unmarshal(row.Facilities, &facilities); err != nil {
			return nil, fmt.Errorf("failed to decode facilities for plan %s: %w", row.ID, err)
		}
	}
	return &plan.Plan{
		ID:                row.ID,
		TenantID:          row.TenantID,
		RequesterID:       row.RequesterID,
		Title:             row.Title,
		Organizer:         row.Organizer,
		StartsAt:          row.StartsAt,
		EndsAt:            row.EndsAt,
		ExpectedAttendees: row.ExpectedAttendees,
		Facilities:        facilities,
		Remarks:           row.Remarks,
		Status:            plan.Status(row.Status),
		FinalComment:      row.FinalComment,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

// encodeFacilities serializes the facility list exactly once. The domain
// guard already refused entries that are themselves encoded lists.
func encodeFacilities(facilities []string) ([]byte, error) {
	if facilities == nil {
		facilities = []string{}
	}
	return json.Marshal(facilities)
}

func toDomainLetter(row *models.ApprovalLetter) *letter.Letter {
	return &letter.Letter{
		ID:             row.ID,
		TenantID:       row.TenantID,
		PlanID:         row.PlanID,
		Role:           letter.Role(row.Role),
		Kind:           letter.Kind(row.Kind),
		Document:       row.Document,
		Comment:        row.Comment,
		DeliveryStatus: letter.DeliveryStatus(row.DeliveryStatus),
		SentAt:         row.SentAt,
		ReceivedAt:     row.ReceivedAt,
		Superseded:     row.Superseded,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func toDomainBundle(row *models.ReleaseBundle) (*release.Bundle, error) {
	var encoded map[string]string
	if err := json.Unmarshal(row.Documents, &encoded); err != nil {
		return nil, fmt.Errorf("failed to decode release documents for plan %s: %w", row.PlanID, err)
	}
	documents := make(map[letter.Role][]byte, len(encoded))
	for role, doc := range encoded {
		raw, err := base64.StdEncoding.DecodeString(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode release document for role %s: %w", role, err)
		}
		documents[letter.Role(role)] = raw
	}
	return &release.Bundle{
		ID:         row.ID,
		TenantID:   row.TenantID,
		PlanID:     row.PlanID,
		Documents:  documents,
		ReleasedBy: row.ReleasedBy,
		ReleasedAt: row.ReleasedAt,
	}, nil
}

func encodeBundleDocuments(documents map[letter.Role][]byte) ([]byte, error) {
	encoded := make(map[string]string, len(documents))
	for role, doc := range documents {
		encoded[string(role)] = base64.StdEncoding.EncodeToString(doc)
	}
	return json.Marshal(encoded)
}
