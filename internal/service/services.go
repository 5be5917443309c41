package service

import (
	"time"

	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Auth       *AuthService
	Credential *CredentialService
	Gate       *AccessGate
	User       *UserService
	Menu       *MenuService
	Order      *OrderService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger logrus.FieldLogger) (*Services, error) {
	policy, err := cfg.PasswordPolicy()
	if err != nil {
		return nil, err
	}
	generator, err := password.NewGenerator(cfg.TemporaryPasswordLength, cfg.TemporaryPasswordAlphabet, policy)
	if err != nil {
		return nil, err
	}
	hasher := password.NewBcryptHasher(cfg.BcryptCost)

	auth := NewAuthService(repos.User, repos.Session, hasher, cfg, logger)
	return &Services{
		Auth:       auth,
		Credential: NewCredentialService(repos.User, repos.Session, hasher, policy, generator, cfg.PasswordWarningDays, logger),
		Gate:       NewAccessGate(auth),
		User:       NewUserService(repos.User, repos.Session, hasher, policy, generator, cfg, logger),
		Menu:       NewMenuService(repos.User, repos.Dish),
		Order:      NewOrderService(repos.Dish, repos.Order),
	}, nil
}

// WithClock replaces the time source of every service. Tests use it to move
// through expiry windows.
func (s *Services) WithClock(now func() time.Time) *Services {
	s.Auth.now = now
	s.Credential.now = now
	s.Gate.now = now
	s.User.now = now
	s.Menu.now = now
	s.Order.now = now
	return s
}
