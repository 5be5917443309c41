package api

import (
	"net/http"

	"github.com/dom/lunch-order-website/internal/api/handlers"
	"github.com/dom/lunch-order-website/internal/api/middleware"
	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/logging"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(services *service.Services, cfg *config.Config, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Credential, cfg, logger)
	userHandler := handlers.NewUserHandler(services.User, services.Credential, logger)
	menuHandler := handlers.NewMenuHandler(services.Menu, services.Order, logger)

	gate := services.Gate
	passwordChange := service.Requirement{AllowPasswordChange: true}
	current := service.Requirement{}
	adminOnly := service.Requirement{AdminOnly: true}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(gate, logger))

			// Reachable while a password change is pending
			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(gate, passwordChange, logger))
				r.Post("/auth/logout", authHandler.Logout)
				r.Get("/auth/me", authHandler.Me)
				r.Get("/auth/password-status", authHandler.PasswordStatus)
				r.Post("/auth/password", authHandler.ChangePassword)
				r.Get("/settings/password-policy", authHandler.PasswordPolicy)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(gate, current, logger))
				r.Get("/dishes", menuHandler.ListDishes)
				r.Get("/orders/{date}", menuHandler.GetOrder)
				r.Put("/orders/{date}", menuHandler.ReplaceOrder)
				r.Get("/users/{id}/orders/{date}", menuHandler.GetOrder)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(gate, adminOnly, logger))
				r.Post("/dishes", menuHandler.CreateDish)
				r.Delete("/dishes/{id}", menuHandler.DeleteDish)
				r.Get("/orders/{date}/summary", menuHandler.Summary)

				r.Get("/users", userHandler.List)
				r.Post("/users", userHandler.Create)
				r.Put("/users/{id}/role", userHandler.UpdateRole)
				r.Put("/users/{id}/active", userHandler.SetActive)
				r.Delete("/users/{id}", userHandler.Delete)
				r.Post("/users/{id}/password-reset", userHandler.ResetPassword)
				r.Put("/users/{id}/password-expiry", userHandler.SetPasswordExpiry)
			})
		})
	})

	return r
}
