package handlers

import (
	"net/http"
	"time"

	"github.com/dom/lunch-order-website/internal/api/middleware"
	"github.com/dom/lunch-order-website/internal/api/respond"
	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService       *service.AuthService
	credentialService *service.CredentialService
	cfg               *config.Config
	logger            logrus.FieldLogger
}

func NewAuthHandler(authService *service.AuthService, credentialService *service.CredentialService, cfg *config.Config, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		credentialService: credentialService,
		cfg:               cfg,
		logger:            logger.WithField("component", "handlers.auth"),
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=256"`
}

type UserResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Role               string     `json:"role"`
	RoleDisplayName    string     `json:"roleDisplayName"`
	IsActive           bool       `json:"isActive"`
	PasswordExpiryDays int        `json:"passwordExpiryDays"`
	LastLoginAt        *time.Time `json:"lastLoginAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type AuthResponse struct {
	User           UserResponse    `json:"user"`
	Token          string          `json:"token"`
	ExpiresAt      time.Time       `json:"expiresAt"`
	PasswordStatus password.Status `json:"passwordStatus"`
}

type MeResponse struct {
	User           UserResponse    `json:"user"`
	PasswordStatus password.Status `json:"passwordStatus"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                 user.ID.String(),
		Username:           user.Username,
		Role:               user.Role.String(),
		RoleDisplayName:    user.Role.DisplayName(),
		IsActive:           user.IsActive,
		PasswordExpiryDays: user.PasswordExpiryDays,
		LastLoginAt:        user.LastLoginAt,
		CreatedAt:          user.CreatedAt,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	respond.JSON(w, http.StatusOK, AuthResponse{
		User:           toUserResponse(result.User),
		Token:          result.Token,
		ExpiresAt:      result.Session.ExpiresAt,
		PasswordStatus: h.credentialService.StatusFor(result.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		respond.ServiceError(w, h.logger, service.ErrNotAuthenticated)
		return
	}

	if err := h.authService.Logout(r.Context(), session.ID); err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.ServiceError(w, h.logger, service.ErrNotAuthenticated)
		return
	}

	respond.JSON(w, http.StatusOK, MeResponse{
		User:           toUserResponse(user),
		PasswordStatus: h.credentialService.StatusFor(user),
	})
}

func (h *AuthHandler) PasswordStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.ServiceError(w, h.logger, service.ErrNotAuthenticated)
		return
	}

	status, err := h.credentialService.PasswordStatus(r.Context(), userID)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, status)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.ServiceError(w, h.logger, service.ErrNotAuthenticated)
		return
	}

	var req ChangePasswordRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := h.credentialService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	status, err := h.credentialService.PasswordStatus(r.Context(), userID)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, status)
}

func (h *AuthHandler) PasswordPolicy(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.credentialService.Policy().Describe())
}
