package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
	"github.com/campus-hq/venue-portal/modules/notification/services"
	"github.com/campus-hq/venue-portal/pkg/application"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/configuration"
)

// ApprovalEventsHandler fans workflow events out into per-user notifications.
// Delivery is best effort: a failed insert is logged, never propagated back
// into the workflow transaction.
type ApprovalEventsHandler struct {
	app     application.Application
	service *services.NotificationService
	logger  *logrus.Logger
}

func RegisterApprovalEventHandlers(app application.Application) {
	handler := &ApprovalEventsHandler{
		app:     app,
		service: app.Service(services.NotificationService{}).(*services.NotificationService),
		logger:  configuration.Use().Logger(),
	}
	app.EventPublisher().Subscribe(handler.onPlanSubmitted)
	app.EventPublisher().Subscribe(handler.onPlanForwarded)
	app.EventPublisher().Subscribe(handler.onPlanFinalized)
	app.EventPublisher().Subscribe(handler.onDecisionRecorded)
	app.EventPublisher().Subscribe(handler.onLettersReleased)
}

func (h *ApprovalEventsHandler) notify(tenantID uuid.UUID, n *notification.Notification) {
	ctx := composables.WithPool(context.Background(), h.app.DB())
	ctx = composables.WithTenantID(ctx, tenantID)

	if _, err := h.service.Create(ctx, n); err != nil {
		h.logger.WithError(err).
			WithField("recipient_id", n.RecipientID).
			WithField("category", n.Category).
			Warn("failed to persist notification")
	}
}

func (h *ApprovalEventsHandler) onPlanSubmitted(event *plan.SubmittedEvent) {
	h.notify(event.Result.TenantID, &notification.Notification{
		RecipientID: event.Result.RequesterID,
		Category:    notification.CategoryRequestSubmitted,
		Title:       "Event plan submitted",
		Message:     fmt.Sprintf("Your event plan %q was submitted for approval.", event.Result.Title),
		Metadata: map[string]string{
			"plan_id": event.Result.ID.String(),
		},
	})
}

func (h *ApprovalEventsHandler) onPlanForwarded(event *plan.ForwardedEvent) {
	h.notify(event.Result.TenantID, &notification.Notification{
		RecipientID: event.Result.RequesterID,
		Category:    notification.CategoryPlanForwarded,
		Title:       "Plan forwarded to service provider",
		Message:     fmt.Sprintf("Your event plan %q was forwarded to the service provider for feasibility review.", event.Result.Title),
		Metadata: map[string]string{
			"plan_id": event.Result.ID.String(),
		},
	})
}

func (h *ApprovalEventsHandler) onPlanFinalized(event *plan.FinalizedEvent) {
	h.notify(event.Result.TenantID, &notification.Notification{
		RecipientID: event.Result.RequesterID,
		Category:    notification.CategoryFinalDecision,
		Title:       "Final decision recorded",
		Message:     fmt.Sprintf("Your event plan %q received a final decision: %s.", event.Result.Title, event.Result.Status),
		Metadata: map[string]string{
			"plan_id": event.Result.ID.String(),
			"status":  string(event.Result.Status),
		},
	})
}

// categoryForDecision separates provider verdicts from authority sign-offs,
// so recipients can filter the two streams apart.
func categoryForDecision(role letter.Role) notification.Category {
	if role == letter.RoleServiceProvider {
		return notification.CategoryServiceProviderDecided
	}
	return notification.CategoryAuthorityDecided
}

func (h *ApprovalEventsHandler) onDecisionRecorded(event *letter.DecisionRecordedEvent) {
	category := categoryForDecision(event.Result.Role)
	h.notify(event.Result.TenantID, &notification.Notification{
		RecipientID: event.RequesterID,
		Category:    category,
		Title:       "Decision recorded",
		Message:     fmt.Sprintf("%s recorded a decision on your event plan: %s.", event.Result.Role, event.Result.Kind),
		Metadata: map[string]string{
			"plan_id":   event.Result.PlanID.String(),
			"letter_id": event.Result.ID.String(),
			"role":      string(event.Result.Role),
			"kind":      string(event.Result.Kind),
		},
	})
}

func (h *ApprovalEventsHandler) onLettersReleased(event *release.ReleasedEvent) {
	h.notify(event.Result.TenantID, &notification.Notification{
		RecipientID: event.RequesterID,
		Category:    notification.CategoryLettersReleased,
		Title:       "Approval letters released",
		Message:     "The signed approval letters for your event plan were released to you.",
		Metadata: map[string]string{
			"plan_id":   event.Result.PlanID.String(),
			"bundle_id": event.Result.ID.String(),
		},
	})
}
