package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
	"github.com/campus-hq/venue-portal/modules/notification/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/modules/notification/services"
	"github.com/campus-hq/venue-portal/pkg/application"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/httpapi"
)

type NotificationAPIController struct {
	app      application.Application
	service  *services.NotificationService
	basePath string
}

func NewNotificationAPIController(app application.Application) application.Controller {
	return &NotificationAPIController{
		app:      app,
		service:  app.Service(services.NotificationService{}).(*services.NotificationService),
		basePath: "/notification/api",
	}
}

func (c *NotificationAPIController) Key() string {
	return c.basePath
}

func (c *NotificationAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/notifications", c.List).Methods(http.MethodGet)
	router.HandleFunc("/notifications/unread-count", c.UnreadCount).Methods(http.MethodGet)
	router.HandleFunc("/notifications/{id}:read", c.MarkRead).Methods(http.MethodPost)
	router.HandleFunc("/notifications:read-all", c.MarkAllRead).Methods(http.MethodPost)
}

func (c *NotificationAPIController) List(w http.ResponseWriter, r *http.Request) {
	recipientID, err := composables.UseUserID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "NOTIFICATION_NO_USER", "user identity required", nil)
		return
	}

	params := &notification.FindParams{
		RecipientID: recipientID,
		UnreadOnly:  r.URL.Query().Get("unread") == "true",
		Limit:       50,
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			params.Limit = parsed
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("category")); v != "" {
		category := notification.Category(v)
		if !category.Valid() {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "NOTIFICATION_INVALID_CATEGORY", "unknown notification category", nil)
			return
		}
		params.Category = &category
	}

	items, err := c.service.List(r.Context(), params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, n := range items {
		out = append(out, notificationToMap(n))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *NotificationAPIController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID, err := composables.UseUserID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "NOTIFICATION_NO_USER", "user identity required", nil)
		return
	}
	count, err := c.service.CountUnread(r.Context(), recipientID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (c *NotificationAPIController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "NOTIFICATION_INVALID_ID", "invalid notification id", nil)
		return
	}
	updated, err := c.service.MarkRead(r.Context(), id)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, notificationToMap(updated))
}

func (c *NotificationAPIController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipientID, err := composables.UseUserID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "NOTIFICATION_NO_USER", "user identity required", nil)
		return
	}
	updated, err := c.service.MarkAllRead(r.Context(), recipientID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

func (c *NotificationAPIController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, persistence.ErrNotificationNotFound) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "not found", nil)
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("notification api error")
	_ = httpapi.WriteError(w, http.StatusInternalServerError, "NOTIFICATION_INTERNAL", "internal error", nil)
}

func notificationToMap(n *notification.Notification) map[string]any {
	out := map[string]any{
		"id":           n.ID,
		"recipient_id": n.RecipientID,
		"category":     n.Category,
		"title":        n.Title,
		"message":      n.Message,
		"metadata":     n.Metadata,
		"read":         n.Read,
		"created_at":   n.CreatedAt,
	}
	if n.ReadAt != nil {
		out["read_at"] = *n.ReadAt
	}
	return out
}
