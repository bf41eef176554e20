package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/chat"
	"perfeval/internal/domain/contact"
	"perfeval/internal/domain/evaluations"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
)

type errorClass struct {
	status int
	code   string
	errs   []error
}

var errorClasses = []errorClass{
	{http.StatusUnauthorized, "mfa_required", []error{auth.ErrMFARequired}},
	{http.StatusUnauthorized, "mfa_invalid", []error{auth.ErrMFAInvalid}},
	{http.StatusUnauthorized, "unauthorized", []error{auth.ErrInvalidCredentials, auth.ErrUnauthorized}},
	{http.StatusNotFound, "not_found", []error{users.ErrNotFound, goals.ErrNotFound, evaluations.ErrNotFound, chat.ErrNotFound}},
	{http.StatusForbidden, "forbidden", []error{
		users.ErrForbidden, goals.ErrForbidden, evaluations.ErrForbidden, evaluations.ErrScoreNotReviewer,
		evaluations.ErrResponsesReviewer, evaluations.ErrReviewerRole, chat.ErrForbidden, contact.ErrForbidden,
	}},
	{http.StatusConflict, "conflict", []error{users.ErrEmailTaken, chat.ErrChannelExists, auth.ErrMFAAlreadyEnabled}},
	{http.StatusBadRequest, "validation_error", []error{
		users.ErrRoleImmutable, users.ErrInvalidRole, auth.ErrRoleNotAllowed, auth.ErrMFANotSetup, auth.ErrMFANotEnabled,
		goals.ErrInvalidProgress, goals.ErrInvalidStatus, goals.ErrInvalidPriority, goals.ErrTitleRequired, goals.ErrInvalidDueDate,
		evaluations.ErrTitleRequired, evaluations.ErrInvalidType, evaluations.ErrRevieweeRequired, evaluations.ErrSelfPeerReview,
		evaluations.ErrInvalidStatus, evaluations.ErrInvalidTransition, evaluations.ErrInvalidProgress, evaluations.ErrInvalidScore,
		evaluations.ErrInvalidDate, evaluations.ErrInvalidQuestion,
		chat.ErrInvalidName, chat.ErrInvalidType, chat.ErrInvalidMessage,
		contact.ErrMissingFields, contact.ErrInvalidEmail,
	}},
}

// StatusFor maps a domain error to its HTTP status and code. Unknown errors
// are internal.
func StatusFor(err error) (int, string) {
	for _, class := range errorClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.status, class.code
			}
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// WriteError renders err. Internal errors are logged and never echoed.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	requestID := requestctx.GetRequestID(r.Context())
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", requestID, "err", err)
		api.Fail(w, status, code, "internal server error", requestID)
		return
	}
	message := err.Error()
	if status == http.StatusUnauthorized && code == "unauthorized" {
		message = auth.ErrInvalidCredentials.Error()
	}
	api.Fail(w, status, code, message, requestID)
}
