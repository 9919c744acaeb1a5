package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/campus-hq/venue-portal/modules/approval/domain/completeness"
	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/modules/approval/services"
	"github.com/campus-hq/venue-portal/pkg/application"
)

type ApprovalAPIController struct {
	app      application.Application
	plans    *services.PlanService
	letters  *services.LetterService
	releases *services.ReleaseService
	provider *services.ProviderService
	basePath string
}

func NewApprovalAPIController(app application.Application) application.Controller {
	return &ApprovalAPIController{
		app:      app,
		plans:    app.Service(services.PlanService{}).(*services.PlanService),
		letters:  app.Service(services.LetterService{}).(*services.LetterService),
		releases: app.Service(services.ReleaseService{}).(*services.ReleaseService),
		provider: app.Service(services.ProviderService{}).(*services.ProviderService),
		basePath: "/approval/api",
	}
}

func (c *ApprovalAPIController) Key() string {
	return c.basePath
}

func (c *ApprovalAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()

	router.HandleFunc("/plans", c.CreatePlan).Methods(http.MethodPost)
	router.HandleFunc("/plans", c.ListPlans).Methods(http.MethodGet)
	router.HandleFunc("/plans/{id}", c.GetPlan).Methods(http.MethodGet)
	router.HandleFunc("/plans/{id}:submit", c.SubmitPlan).Methods(http.MethodPost)
	router.HandleFunc("/plans/{id}:forward", c.ForwardPlan).Methods(http.MethodPost)
	router.HandleFunc("/plans/{id}:finalize", c.FinalizePlan).Methods(http.MethodPost)
	router.HandleFunc("/plans/{id}:release", c.ReleasePlan).Methods(http.MethodPost)
	router.HandleFunc("/plans/{id}/decisions", c.RecordDecision).Methods(http.MethodPost)
	router.HandleFunc("/plans/{id}/decisions", c.ListDecisions).Methods(http.MethodGet)
	router.HandleFunc("/plans/{id}/snapshot", c.GetSnapshot).Methods(http.MethodGet)
	router.HandleFunc("/plans/{id}/release/documents", c.StageDocument).Methods(http.MethodPost)
	router.HandleFunc("/plans/{id}/release", c.GetRelease).Methods(http.MethodGet)
	router.HandleFunc("/queue", c.Queue).Methods(http.MethodGet)
	router.HandleFunc("/letters/{id}:sent", c.LetterSent).Methods(http.MethodPost)
	router.HandleFunc("/letters/{id}:received", c.LetterReceived).Methods(http.MethodPost)
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func (c *ApprovalAPIController) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var dto services.CreatePlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_JSON", "invalid json")
		return
	}
	created, err := c.plans.Create(r.Context(), &dto)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, planToMap(created))
}

func (c *ApprovalAPIController) ListPlans(w http.ResponseWriter, r *http.Request) {
	params := &plan.FindParams{Limit: 50}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		status := plan.Status(v)
		if !status.Valid() {
			writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_STATUS", "unknown status")
			return
		}
		params.Statuses = []plan.Status{status}
	}
	items, err := c.plans.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	total, err := c.plans.Count(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, p := range items {
		out = append(out, planToMap(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *ApprovalAPIController) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	entity, err := c.plans.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planToMap(entity))
}

func (c *ApprovalAPIController) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	updated, err := c.plans.Submit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planToMap(updated))
}

func (c *ApprovalAPIController) ForwardPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	updated, err := c.provider.Forward(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planToMap(updated))
}

type finalizeRequest struct {
	Outcome string `json:"outcome"`
	Comment string `json:"comment"`
}

func (c *ApprovalAPIController) FinalizePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_JSON", "invalid json")
		return
	}
	outcome := plan.Status(req.Outcome)
	if outcome != plan.StatusApproved && outcome != plan.StatusRejected {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_OUTCOME", "outcome must be approved or rejected")
		return
	}
	updated, err := c.plans.Finalize(r.Context(), id, outcome, req.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planToMap(updated))
}

type decisionRequest struct {
	Role     string  `json:"role"`
	Kind     string  `json:"kind"`
	Document string  `json:"document"`
	Comment  *string `json:"comment"`
}

func (c *ApprovalAPIController) RecordDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_JSON", "invalid json")
		return
	}
	document, err := base64.StdEncoding.DecodeString(req.Document)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_DOCUMENT", "document must be base64")
		return
	}
	created, err := c.letters.RecordDecision(r.Context(), &services.RecordDecisionDTO{
		PlanID:   id,
		Role:     letter.Role(req.Role),
		Kind:     letter.Kind(req.Kind),
		Document: document,
		Comment:  req.Comment,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, letterToMap(created))
}

func (c *ApprovalAPIController) ListDecisions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	items, err := c.letters.ListActive(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, l := range items {
		out = append(out, letterToMap(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *ApprovalAPIController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	snapshot, err := c.plans.Snapshot(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToMap(snapshot))
}

type stageRequest struct {
	Role     string `json:"role"`
	Document string `json:"document"`
}

func (c *ApprovalAPIController) StageDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_JSON", "invalid json")
		return
	}
	document, err := base64.StdEncoding.DecodeString(req.Document)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_DOCUMENT", "document must be base64")
		return
	}
	if err := c.releases.StageDocument(id, letter.Role(req.Role), document); err != nil {
		writeServiceError(w, r, err)
		return
	}
	staged := c.releases.StagedRoles(id)
	writeJSON(w, http.StatusOK, map[string]any{"staged_roles": staged})
}

func (c *ApprovalAPIController) ReleasePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	bundle, err := c.releases.ReleaseStaged(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bundleToMap(bundle))
}

func (c *ApprovalAPIController) GetRelease(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid plan id")
		return
	}
	bundle, err := c.releases.GetByPlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundleToMap(bundle))
}

func (c *ApprovalAPIController) Queue(w http.ResponseWriter, r *http.Request) {
	role := letter.Role(strings.TrimSpace(r.URL.Query().Get("role")))
	var (
		items []*plan.Plan
		err   error
	)
	if role == letter.RoleServiceProvider {
		items, err = c.provider.Queue(r.Context())
	} else {
		items, err = c.plans.PendingForRole(r.Context(), role)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, p := range items {
		out = append(out, planToMap(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *ApprovalAPIController) LetterSent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid letter id")
		return
	}
	updated, err := c.letters.MarkSent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, letterToMap(updated))
}

func (c *ApprovalAPIController) LetterReceived(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_INVALID_ID", "invalid letter id")
		return
	}
	updated, err := c.letters.MarkReceived(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, letterToMap(updated))
}

func planToMap(p *plan.Plan) map[string]any {
	out := map[string]any{
		"id":                 p.ID,
		"requester_id":       p.RequesterID,
		"title":              p.Title,
		"organizer":          p.Organizer,
		"starts_at":          p.StartsAt.Format(time.RFC3339),
		"ends_at":            p.EndsAt.Format(time.RFC3339),
		"expected_attendees": p.ExpectedAttendees,
		"facilities":         p.Facilities,
		"remarks":            p.Remarks,
		"status":             p.Status,
		"version":            p.Version,
		"created_at":         p.CreatedAt,
		"updated_at":         p.UpdatedAt,
	}
	if p.FinalComment != nil {
		out["final_comment"] = *p.FinalComment
	}
	return out
}

func letterToMap(l *letter.Letter) map[string]any {
	out := map[string]any{
		"id":              l.ID,
		"plan_id":         l.PlanID,
		"role":            l.Role,
		"kind":            l.Kind,
		"delivery_status": l.DeliveryStatus,
		"superseded":      l.Superseded,
		"created_at":      l.CreatedAt,
		"updated_at":      l.UpdatedAt,
	}
	if l.Comment != nil {
		out["comment"] = *l.Comment
	}
	if l.SentAt != nil {
		out["sent_at"] = *l.SentAt
	}
	if l.ReceivedAt != nil {
		out["received_at"] = *l.ReceivedAt
	}
	return out
}

func snapshotToMap(s completeness.Snapshot) map[string]any {
	authorities := make(map[string]bool, len(s.Authorities))
	for role, ok := range s.Authorities {
		authorities[string(role)] = ok
	}
	missing := make([]string, 0)
	for _, role := range s.MissingRoles() {
		missing = append(missing, string(role))
	}
	return map[string]any{
		"authorities":                authorities,
		"service_provider_engaged":   s.ServiceProviderEngaged,
		"service_provider_satisfied": s.ServiceProviderSatisfied,
		"ready_for_approval":         s.ReadyForApproval,
		"missing_roles":              missing,
	}
}

func bundleToMap(b *release.Bundle) map[string]any {
	documents := make(map[string]string, len(b.Documents))
	for role, doc := range b.Documents {
		documents[string(role)] = base64.StdEncoding.EncodeToString(doc)
	}
	return map[string]any{
		"id":          b.ID,
		"plan_id":     b.PlanID,
		"documents":   documents,
		"released_by": b.ReleasedBy,
		"released_at": b.ReleasedAt.Format(time.RFC3339),
	}
}
