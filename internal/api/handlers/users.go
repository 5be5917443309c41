package handlers

import (
	"net/http"

	"github.com/dom/lunch-order-website/internal/api/middleware"
	"github.com/dom/lunch-order-website/internal/api/respond"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService       *service.UserService
	credentialService *service.CredentialService
	logger            logrus.FieldLogger
}

func NewUserHandler(userService *service.UserService, credentialService *service.CredentialService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		userService:       userService,
		credentialService: credentialService,
		logger:            logger.WithField("component", "handlers.users"),
	}
}

type CreateUserRequest struct {
	Username           string `json:"username" validate:"required,min=3,max=64"`
	Role               string `json:"role" validate:"omitempty,oneof=employee admin"`
	TemporaryPassword  string `json:"temporaryPassword" validate:"omitempty,max=256"`
	PasswordExpiryDays int    `json:"passwordExpiryDays" validate:"omitempty,min=1,max=365"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type ResetPasswordRequest struct {
	TemporaryPassword string `json:"temporaryPassword" validate:"omitempty,max=256"`
}

type SetExpiryRequest struct {
	PasswordExpiryDays int `json:"passwordExpiryDays" validate:"required"`
}

// TemporaryPasswordResponse carries a one-time plaintext back to the admin.
type TemporaryPasswordResponse struct {
	User              UserResponse `json:"user"`
	TemporaryPassword string       `json:"temporaryPassword"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	users, err := h.userService.ListUsers(r.Context(), actorID)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	var req CreateUserRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	user, temporary, err := h.userService.CreateUser(r.Context(), actorID, service.CreateUserInput{
		Username:           req.Username,
		Role:               domain.UserRole(req.Role),
		TemporaryPassword:  req.TemporaryPassword,
		PasswordExpiryDays: req.PasswordExpiryDays,
	})
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, TemporaryPasswordResponse{
		User:              toUserResponse(user),
		TemporaryPassword: temporary,
	})
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	targetID, err := uuidParam(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req UpdateRoleRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), actorID, targetID, domain.UserRole(req.Role))
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	targetID, err := uuidParam(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req SetActiveRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	user, err := h.userService.SetActive(r.Context(), actorID, targetID, *req.Active)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	targetID, err := uuidParam(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := h.userService.DeleteUser(r.Context(), actorID, targetID); err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.NoContent(w)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	targetID, err := uuidParam(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req ResetPasswordRequest
	if err := decodeOptionalRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	temporary, err := h.credentialService.ResetPassword(r.Context(), actorID, targetID, req.TemporaryPassword)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"temporaryPassword": temporary})
}

func (h *UserHandler) SetPasswordExpiry(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	targetID, err := uuidParam(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req SetExpiryRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := h.credentialService.SetPasswordExpiryDays(r.Context(), actorID, targetID, req.PasswordExpiryDays); err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.NoContent(w)
}
