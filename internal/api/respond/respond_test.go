package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/lunch-order-website/internal/api/respond"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not authenticated", service.ErrNotAuthenticated, http.StatusUnauthorized, respond.CodeNotAuthenticated},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, respond.CodeInvalidCredentials},
		{"change required", service.ErrPasswordChangeRequired, http.StatusForbidden, respond.CodePasswordChangeRequired},
		{"wrapped forbidden", fmt.Errorf("update role: %w", service.ErrProtectedAccount), http.StatusForbidden, respond.CodeForbidden},
		{"not owner", service.ErrNotOwner, http.StatusForbidden, respond.CodeForbidden},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound, respond.CodeNotFound},
		{"wrong current password", service.ErrWrongCurrentPassword, http.StatusBadRequest, respond.CodeWrongCurrentPassword},
		{"username exists", service.ErrUsernameExists, http.StatusConflict, respond.CodeUsernameExists},
		{"concurrent change", service.ErrCredentialConflict, http.StatusConflict, respond.CodeConflict},
		{"bad quantity", domain.ErrInvalidQuantity, http.StatusBadRequest, respond.CodeInvalidRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, respond.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.ServiceError(rec, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body respond.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Empty(t, body.Reasons)
		})
	}
}

func TestServiceError_PolicyReasons(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("change password: %w", &password.PolicyError{
		Reasons: []password.Reason{password.ReasonTooShort, password.ReasonReused},
	})
	respond.ServiceError(rec, logrus.New(), err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, respond.CodePolicyViolation, body.Error)
	assert.Equal(t, []password.Reason{password.ReasonTooShort, password.ReasonReused}, body.Reasons)
}
