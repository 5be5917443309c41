package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Requirement describes what a resource demands of the caller.
type Requirement struct {
	// AdminOnly restricts the resource to admin and superadmin
	AdminOnly bool

	// OwnerID, when set, limits non-admins to their own resources
	OwnerID uuid.UUID

	// AllowPasswordChange marks the password-change endpoint class, which
	// stays reachable while a change is pending
	AllowPasswordChange bool
}

// Authorize decides whether user may reach a resource with the given
// requirement at now. Checks run in order: pending password change, role,
// ownership.
func Authorize(user *domain.User, req Requirement, now time.Time) error {
	if user == nil {
		return ErrNotAuthenticated
	}

	if !req.AllowPasswordChange {
		expired := password.IsExpired(user.PasswordChangedAt, user.PasswordExpiryDays, now)
		if password.RequiresChange(user.MustChangePassword, expired) {
			return ErrPasswordChangeRequired
		}
	}

	if req.AdminOnly && !user.IsAdmin() {
		return ErrInsufficientRole
	}

	if req.OwnerID != uuid.Nil && req.OwnerID != user.ID && !user.IsAdmin() {
		return ErrNotOwner
	}

	return nil
}

// AccessGate resolves sessions to users and applies Authorize.
type AccessGate struct {
	auth *AuthService
	now  func() time.Time
}

func NewAccessGate(auth *AuthService) *AccessGate {
	return &AccessGate{auth: auth, now: time.Now}
}

func (g *AccessGate) Resolve(ctx context.Context, token string) (*domain.User, *domain.UserSession, error) {
	return g.auth.CurrentSessionUser(ctx, token)
}

func (g *AccessGate) Authorize(user *domain.User, req Requirement) error {
	return Authorize(user, req, g.now())
}

// loadAdmin fetches the acting user and requires an admin role. A missing
// actor is treated like an unprivileged one.
func loadAdmin(ctx context.Context, users repository.UserRepository, actorID uuid.UUID) (*domain.User, error) {
	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInsufficientRole
		}
		return nil, err
	}
	if !actor.IsActive || !actor.IsAdmin() {
		return nil, ErrInsufficientRole
	}
	return actor, nil
}

// loadTarget fetches the user an admin operation acts on.
func loadTarget(ctx context.Context, users repository.UserRepository, targetID uuid.UUID) (*domain.User, error) {
	target, err := users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return target, nil
}
