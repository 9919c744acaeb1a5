package services

import (
	"strings"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/pkg/serrors"
)

var (
	ErrInvalidTransition   = serrors.NewError("APPROVAL_INVALID_TRANSITION", "plan status does not permit this operation")
	ErrIncompleteApprovals = serrors.NewError("APPROVAL_INCOMPLETE", "not every required sign-off is in place")
	ErrAlreadyFinalized    = serrors.NewError("APPROVAL_ALREADY_FINALIZED", "plan already carries a final decision")
	ErrAlreadyReleased     = serrors.NewError("APPROVAL_ALREADY_RELEASED", "letters were already released for this plan")
	ErrInvalidRole         = serrors.NewError("APPROVAL_INVALID_ROLE", "role is not one of the recognized authorities")
	ErrInvalidKind         = serrors.NewError("APPROVAL_INVALID_KIND", "decision kind must be approval or rejection")
	ErrEmptyDocument       = serrors.NewError("APPROVAL_EMPTY_DOCUMENT", "a signed document is required")
	ErrCommentRequired     = serrors.NewError("APPROVAL_COMMENT_REQUIRED", "a comment is required for rejection")
	ErrPlanNotApproved     = serrors.NewError("APPROVAL_NOT_APPROVED", "letters can only be released for an approved plan")
	ErrReleaseIncomplete   = serrors.NewError("APPROVAL_RELEASE_INCOMPLETE", "all four signed letters are required for release")
	ErrInvalidDelivery     = serrors.NewError("APPROVAL_INVALID_DELIVERY_TRANSITION", "received may only follow sent")
)

func incompleteApprovalsError(missing []letter.Role) *serrors.BaseError {
	names := make([]string, len(missing))
	for i, role := range missing {
		names[i] = string(role)
	}
	return ErrIncompleteApprovals.WithTemplateData(map[string]string{
		"missing_roles": strings.Join(names, ","),
	})
}

func releaseIncompleteError(missing []letter.Role) *serrors.BaseError {
	names := make([]string, len(missing))
	for i, role := range missing {
		names[i] = string(role)
	}
	return ErrReleaseIncomplete.WithTemplateData(map[string]string{
		"missing_roles": strings.Join(names, ","),
	})
}
