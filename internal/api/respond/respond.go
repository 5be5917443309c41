// Package respond writes JSON bodies and maps service errors to HTTP.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/sirupsen/logrus"
)

// Error codes returned in the "error" field.
const (
	CodeNotAuthenticated       = "not_authenticated"
	CodeInvalidCredentials     = "invalid_credentials"
	CodePasswordChangeRequired = "password_change_required"
	CodeForbidden              = "forbidden"
	CodeNotFound               = "not_found"
	CodeWrongCurrentPassword   = "wrong_current_password"
	CodePolicyViolation        = "policy_violation"
	CodeUsernameExists         = "username_exists"
	CodeConflict               = "conflict"
	CodeInvalidRequest         = "invalid_request"
	CodeInternal               = "internal_error"
)

type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Reasons []password.Reason `json:"reasons,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: code, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeInvalidRequest, message)
}

// ServiceError writes the response for an error returned by a service.
// Unrecognised errors are logged and reported as a generic 500.
func ServiceError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	var policyErr *password.PolicyError
	switch {
	case errors.As(err, &policyErr):
		JSON(w, http.StatusUnprocessableEntity, ErrorBody{
			Error:   CodePolicyViolation,
			Message: "Password does not meet the password policy",
			Reasons: policyErr.Reasons,
		})
	case errors.Is(err, service.ErrNotAuthenticated):
		Error(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication required")
	case errors.Is(err, service.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, service.ErrPasswordChangeRequired):
		Error(w, http.StatusForbidden, CodePasswordChangeRequired, "Password change required")
	case errors.Is(err, service.ErrForbidden):
		Error(w, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrDishNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrWrongCurrentPassword):
		Error(w, http.StatusBadRequest, CodeWrongCurrentPassword, "Current password is incorrect")
	case errors.Is(err, service.ErrUsernameExists):
		Error(w, http.StatusConflict, CodeUsernameExists, "Username already exists")
	case errors.Is(err, service.ErrCredentialConflict):
		Error(w, http.StatusConflict, CodeConflict, "Password was changed concurrently, retry")
	case errors.Is(err, service.ErrInvalidExpiryDays),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidMenuDate),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrDuplicateOrderDish),
		errors.Is(err, domain.ErrDishNotOnMenu):
		BadRequest(w, err.Error())
	default:
		logger.WithError(err).Error("unhandled service error")
		Error(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}
