package controllers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/httpapi"
	"github.com/campus-hq/venue-portal/pkg/serrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	_ = httpapi.WriteJSON(w, status, payload)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	_ = httpapi.WriteError(w, status, code, message, nil)
}

// writeServiceError translates service and repository errors into the API
// error envelope. Unknown errors are logged and reported as 500 without
// leaking internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var base *serrors.BaseError
	if errors.As(err, &base) {
		_ = httpapi.WriteError(w, statusForCode(base.Code), base.Code, base.Message, base.TemplateData)
		return
	}
	var validation validator.ValidationErrors
	if errors.As(err, &validation) {
		writeAPIError(w, http.StatusBadRequest, "APPROVAL_VALIDATION_FAILED", validation.Error())
		return
	}
	switch {
	case errors.Is(err, persistence.ErrPlanNotFound),
		errors.Is(err, persistence.ErrLetterNotFound),
		errors.Is(err, persistence.ErrBundleNotFound):
		writeAPIError(w, http.StatusNotFound, "APPROVAL_NOT_FOUND", "not found")
	case errors.Is(err, persistence.ErrPlanVersionStale):
		writeAPIError(w, http.StatusConflict, "APPROVAL_STALE_VERSION", "plan was modified concurrently")
	default:
		logger := composables.UseLogger(r.Context())
		logger.WithError(err).Error("approval api error")
		writeAPIError(w, http.StatusInternalServerError, "APPROVAL_INTERNAL", "internal error")
	}
}

func statusForCode(code string) int {
	switch code {
	case "APPROVAL_INVALID_TRANSITION",
		"APPROVAL_ALREADY_FINALIZED",
		"APPROVAL_ALREADY_RELEASED",
		"APPROVAL_NOT_APPROVED",
		"APPROVAL_INVALID_DELIVERY_TRANSITION":
		return http.StatusConflict
	case "APPROVAL_INCOMPLETE",
		"APPROVAL_RELEASE_INCOMPLETE":
		return http.StatusUnprocessableEntity
	case "APPROVAL_INVALID_ROLE",
		"APPROVAL_INVALID_KIND",
		"APPROVAL_EMPTY_DOCUMENT",
		"APPROVAL_COMMENT_REQUIRED",
		"APPROVAL_INVALID_FACILITIES":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
