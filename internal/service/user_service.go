package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserService manages accounts on behalf of administrators.
type UserService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      password.Hasher
	policy      *password.Policy
	generator   *password.Generator
	cfg         *config.Config
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewUserService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher password.Hasher,
	policy *password.Policy,
	generator *password.Generator,
	cfg *config.Config,
	logger logrus.FieldLogger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		policy:      policy,
		generator:   generator,
		cfg:         cfg,
		logger:      logger.WithField("component", "users"),
		now:         time.Now,
	}
}

type CreateUserInput struct {
	Username           string
	Role               domain.UserRole
	TemporaryPassword  string
	PasswordExpiryDays int
}

// CreateUser adds an account with a temporary password the user must
// replace at first login. The plaintext is returned once.
func (s *UserService) CreateUser(ctx context.Context, actorID uuid.UUID, input CreateUserInput) (*domain.User, string, error) {
	if _, err := loadAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, "", err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.IsValid() {
		return nil, "", domain.ErrInvalidRole
	}
	if role == domain.RoleSuperadmin {
		return nil, "", ErrProtectedAccount
	}

	expiryDays := input.PasswordExpiryDays
	if expiryDays == 0 {
		expiryDays = s.cfg.PasswordDefaultExpiryDays
	}
	if expiryDays < config.MinExpiryDays || expiryDays > config.MaxExpiryDays {
		return nil, "", ErrInvalidExpiryDays
	}

	temporary := input.TemporaryPassword
	if temporary == "" {
		generated, err := s.generator.Generate()
		if err != nil {
			return nil, "", err
		}
		temporary = generated
	} else if err := s.policy.Validate(temporary); err != nil {
		return nil, "", err
	}

	user, err := s.create(ctx, NormalizeUsername(input.Username), temporary, role, expiryDays, true)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  user.ID,
		"role":     user.Role,
	}).Info("user created")

	return user, temporary, nil
}

// BootstrapSuperadmin creates the first superadmin. It is a no-op when one
// already exists and reports whether an account was created.
func (s *UserService) BootstrapSuperadmin(ctx context.Context, username, plaintext string) (*domain.User, bool, error) {
	count, err := s.userRepo.CountByRole(ctx, domain.RoleSuperadmin)
	if err != nil {
		return nil, false, err
	}
	if count > 0 {
		return nil, false, nil
	}

	if err := s.policy.Validate(plaintext); err != nil {
		return nil, false, err
	}

	user, err := s.create(ctx, NormalizeUsername(username), plaintext, domain.RoleSuperadmin, s.cfg.PasswordDefaultExpiryDays, false)
	if err != nil {
		return nil, false, err
	}

	s.logger.WithField("user_id", user.ID).Info("superadmin bootstrapped")
	return user, true, nil
}

func (s *UserService) create(ctx context.Context, username, plaintext string, role domain.UserRole, expiryDays int, mustChange bool) (*domain.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:                 uuid.New(),
		Username:           username,
		PasswordHash:       hash,
		Role:               role,
		IsActive:           true,
		PasswordChangedAt:  now,
		PasswordExpiryDays: expiryDays,
		MustChangePassword: mustChange,
		PasswordHistory:    []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error) {
	if _, err := loadAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// UpdateRole moves a user between employee and admin. The superadmin role
// is neither granted nor revoked here, and admins cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, role domain.UserRole) (*domain.User, error) {
	actor, err := loadAdmin(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	target, err := loadTarget(ctx, s.userRepo, targetID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleSuperadmin || target.Role == domain.RoleSuperadmin || target.ID == actor.ID {
		return nil, ErrProtectedAccount
	}

	if err := s.userRepo.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, s.mapMissing(err)
	}
	target.Role = role

	s.logger.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
		"role":      role,
	}).Info("role updated")
	return target, nil
}

// SetActive activates or deactivates an account. Deactivating the superadmin
// or oneself is refused; deactivation ends the user's sessions.
func (s *UserService) SetActive(ctx context.Context, actorID, targetID uuid.UUID, active bool) (*domain.User, error) {
	actor, err := loadAdmin(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	target, err := loadTarget(ctx, s.userRepo, targetID)
	if err != nil {
		return nil, err
	}
	if !active && (target.Role == domain.RoleSuperadmin || target.ID == actor.ID) {
		return nil, ErrProtectedAccount
	}

	if err := s.userRepo.UpdateActive(ctx, target.ID, active); err != nil {
		return nil, s.mapMissing(err)
	}
	target.IsActive = active

	if !active {
		if err := s.sessionRepo.DeleteByUserID(ctx, target.ID); err != nil {
			s.logger.WithError(err).WithField("user_id", target.ID).Warn("failed to revoke sessions after deactivation")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
		"active":    active,
	}).Info("activation changed")
	return target, nil
}

// DeleteUser removes an account and its orders. The superadmin and the
// caller's own account cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := loadAdmin(ctx, s.userRepo, actorID)
	if err != nil {
		return err
	}

	target, err := loadTarget(ctx, s.userRepo, targetID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperadmin || target.ID == actor.ID {
		return ErrProtectedAccount
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, target.ID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, target.ID); err != nil {
		return s.mapMissing(err)
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
	}).Info("user deleted")
	return nil
}

func (s *UserService) mapMissing(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
