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

// CredentialService is the only writer of password fields.
type CredentialService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      password.Hasher
	policy      *password.Policy
	generator   *password.Generator
	warningDays int
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewCredentialService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher password.Hasher,
	policy *password.Policy,
	generator *password.Generator,
	warningDays int,
	logger logrus.FieldLogger,
) *CredentialService {
	return &CredentialService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		policy:      policy,
		generator:   generator,
		warningDays: warningDays,
		logger:      logger.WithField("component", "credentials"),
		now:         time.Now,
	}
}

// Policy returns the canonical password policy.
func (s *CredentialService) Policy() *password.Policy {
	return s.policy
}

// ChangePassword is the self-service change. It verifies the current
// password, applies the policy, and clears the forced-change flag.
func (s *CredentialService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return ErrWrongCurrentPassword
	}

	if err := s.validateNew(user, newPassword); err != nil {
		return err
	}

	if err := s.store(ctx, user, newPassword, false); err != nil {
		return err
	}

	s.logger.WithField("user_id", user.ID).Info("password changed")
	return nil
}

// ResetPassword sets a temporary password on target and forces a change at
// next use. An empty temporary password is generated. The plaintext is
// returned once and never logged.
func (s *CredentialService) ResetPassword(ctx context.Context, actorID, targetID uuid.UUID, temporary string) (string, error) {
	actor, err := loadAdmin(ctx, s.userRepo, actorID)
	if err != nil {
		return "", err
	}

	target, err := loadTarget(ctx, s.userRepo, targetID)
	if err != nil {
		return "", err
	}
	if target.Role == domain.RoleSuperadmin && actor.Role != domain.RoleSuperadmin {
		return "", ErrProtectedAccount
	}

	if temporary == "" {
		temporary, err = s.generator.Generate()
		if err != nil {
			return "", err
		}
	} else if err := s.policy.Validate(temporary); err != nil {
		return "", err
	}

	if err := s.store(ctx, target, temporary, true); err != nil {
		return "", err
	}

	if target.ID != actor.ID {
		if err := s.sessionRepo.DeleteByUserID(ctx, target.ID); err != nil {
			s.logger.WithError(err).WithField("user_id", target.ID).Warn("failed to revoke sessions after reset")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
	}).Info("password reset")

	return temporary, nil
}

// PasswordStatus is the read-only projection used for banners.
func (s *CredentialService) PasswordStatus(ctx context.Context, userID uuid.UUID) (*password.Status, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	status := StatusOf(user, s.warningDays, s.now())
	return &status, nil
}

// StatusFor evaluates an already loaded user at the service clock.
func (s *CredentialService) StatusFor(user *domain.User) password.Status {
	return StatusOf(user, s.warningDays, s.now())
}

// StatusOf evaluates a loaded user's password state.
func StatusOf(user *domain.User, warningDays int, now time.Time) password.Status {
	return password.Evaluate(user.PasswordChangedAt, user.PasswordExpiryDays, user.MustChangePassword, warningDays, now)
}

// SetPasswordExpiryDays overrides the expiry period of one user.
func (s *CredentialService) SetPasswordExpiryDays(ctx context.Context, actorID, targetID uuid.UUID, days int) error {
	if _, err := loadAdmin(ctx, s.userRepo, actorID); err != nil {
		return err
	}
	if days < config.MinExpiryDays || days > config.MaxExpiryDays {
		return ErrInvalidExpiryDays
	}

	if err := s.userRepo.UpdatePasswordExpiryDays(ctx, targetID, days); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *CredentialService) validateNew(user *domain.User, plaintext string) error {
	var reasons []password.Reason

	var policyErr *password.PolicyError
	if err := s.policy.Validate(plaintext); errors.As(err, &policyErr) {
		reasons = append(reasons, policyErr.Reasons...)
	}
	if err := s.policy.CheckReuse(s.hasher, plaintext, user.PasswordHash, user.PasswordHistory); errors.As(err, &policyErr) {
		reasons = append(reasons, policyErr.Reasons...)
	}

	if len(reasons) > 0 {
		return &password.PolicyError{Reasons: reasons}
	}
	return nil
}

// store writes the new hash with a compare-and-swap on the hash the caller
// loaded, so a concurrent change or reset is never silently overwritten.
func (s *CredentialService) store(ctx context.Context, user *domain.User, plaintext string, mustChange bool) error {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	update := repository.CredentialUpdate{
		PasswordHash:       hash,
		PasswordChangedAt:  s.now(),
		MustChangePassword: mustChange,
		PasswordHistory:    s.policy.RotateHistory(user.PasswordHash, user.PasswordHistory),
	}

	if err := s.userRepo.UpdateCredentials(ctx, user.ID, user.PasswordHash, update); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return ErrCredentialConflict
		}
		return err
	}

	user.PasswordHash = update.PasswordHash
	user.PasswordChangedAt = update.PasswordChangedAt
	user.MustChangePassword = update.MustChangePassword
	user.PasswordHistory = update.PasswordHistory
	return nil
}
