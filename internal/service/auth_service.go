package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      password.Hasher
	cfg         *config.Config
	logger      logrus.FieldLogger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, hasher password.Hasher, cfg *config.Config, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		cfg:         cfg,
		logger:      logger.WithField("component", "auth"),
		now:         time.Now,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	User    *domain.User
	Session *domain.UserSession
	Token   string
}

// SessionClaims are carried by the signed session token. The JWT ID is the
// server-side session ID and the subject is the user ID.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// NormalizeUsername applies the case-insensitive collation used for logins.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Login authenticates a username/password pair. Unknown users, wrong
// passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, NormalizeUsername(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// keep response timing close to the wrong-password path
			s.hasher.Verify(input.Password, s.timingHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.UserSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.signSession(session)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return &AuthResult{
		User:    user,
		Session: session,
		Token:   token,
	}, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

func (s *AuthService) signSession(session *domain.UserSession) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// CurrentSessionUser resolves a session token to its live session and user.
// Every reason the token cannot be honoured maps to ErrNotAuthenticated;
// storage failures are returned as-is.
func (s *AuthService) CurrentSessionUser(ctx context.Context, tokenString string) (*domain.User, *domain.UserSession, error) {
	if tokenString == "" {
		return nil, nil, ErrNotAuthenticated
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, ErrNotAuthenticated
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, nil, ErrNotAuthenticated
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, ErrNotAuthenticated
		}
		return nil, nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return nil, nil, ErrNotAuthenticated
	}
	if session.UserID.String() != claims.Subject {
		return nil, nil, ErrNotAuthenticated
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotAuthenticated
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrNotAuthenticated
	}

	return user, session, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// RevokeUserSessions ends every session of the user.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}
