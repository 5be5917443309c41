package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/lunch-order-website/internal/api/respond"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "session_id"

type contextKey string

const (
	UserKey    contextKey = "user"
	SessionKey contextKey = "session"
)

// Auth resolves the session token from the Authorization header or the
// session cookie and stores the user and session in the request context.
func Auth(gate *service.AccessGate, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	logger = logger.WithField("component", "middleware.auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				respond.ServiceError(w, logger, service.ErrNotAuthenticated)
				return
			}

			user, session, err := gate.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrNotAuthenticated) {
					logger.WithError(err).Error("session lookup failed")
				}
				respond.ServiceError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require applies the access decision for a route group. It must run after Auth.
func Require(gate *service.AccessGate, req service.Requirement, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	logger = logger.WithField("component", "middleware.require")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := GetUser(r.Context())
			if err := gate.Authorize(user, req); err != nil {
				respond.ServiceError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

func GetSession(ctx context.Context) (*domain.UserSession, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.UserSession)
	return session, ok
}
