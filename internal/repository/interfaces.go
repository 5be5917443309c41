package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	// ErrStaleWrite means a compare-and-swap update matched no row.
	ErrStaleWrite = errors.New("stale write")

	ErrSessionNotFound = errors.New("session not found")
)

// CredentialUpdate is the full set of password fields written together.
type CredentialUpdate struct {
	PasswordHash       string
	PasswordChangedAt  time.Time
	MustChangePassword bool
	PasswordHistory    []string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	CountByRole(ctx context.Context, role domain.UserRole) (int64, error)
	// UpdateCredentials applies update only if the stored hash still equals
	// expectedHash, returning ErrStaleWrite otherwise.
	UpdateCredentials(ctx context.Context, id uuid.UUID, expectedHash string, update CredentialUpdate) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error
	UpdateActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdatePasswordExpiryDays(ctx context.Context, id uuid.UUID, days int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository is the server-side session store.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type DishRepository interface {
	Create(ctx context.Context, dish *domain.Dish) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dish, error)
	ListByDate(ctx context.Context, date datatypes.Date) ([]*domain.Dish, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	// ReplaceForUser swaps the user's lines for date in one transaction.
	ReplaceForUser(ctx context.Context, userID uuid.UUID, date datatypes.Date, lines []*domain.OrderLine) error
	ListForUser(ctx context.Context, userID uuid.UUID, date datatypes.Date) ([]*domain.OrderLine, error)
	Summary(ctx context.Context, date datatypes.Date) ([]domain.DishTotal, error)
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Dish    DishRepository
	Order   OrderRepository
}
