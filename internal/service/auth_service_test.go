package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/lunch-order-website/internal/service"
	"github.com/dom/lunch-order-website/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	services, repos, testDB := testutil.NewTestServices(t, testutil.TestConfig())
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func()
		username string
		password string
		wantErr  error
	}{
		{
			name: "successful login",
			setup: func() {
				testutil.NewUserBuilder().WithUsername("loginuser").WithPassword("correct123").Build(t, testDB.DB)
			},
			username: "loginuser",
			password: "correct123",
		},
		{
			name: "username is case insensitive",
			setup: func() {
				testutil.NewUserBuilder().WithUsername("loginuser").WithPassword("correct123").Build(t, testDB.DB)
			},
			username: "  LoginUser ",
			password: "correct123",
		},
		{
			name: "wrong password",
			setup: func() {
				testutil.NewUserBuilder().WithUsername("loginuser").WithPassword("correct123").Build(t, testDB.DB)
			},
			username: "loginuser",
			password: "wrong12345",
			wantErr:  service.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "nobody",
			password: "whatever1",
			wantErr:  service.ErrInvalidCredentials,
		},
		{
			name: "inactive user",
			setup: func() {
				testutil.NewUserBuilder().WithUsername("loginuser").WithPassword("correct123").Inactive().Build(t, testDB.DB)
			},
			username: "loginuser",
			password: "correct123",
			wantErr:  service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			result, err := services.Auth.Login(ctx, service.LoginInput{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "loginuser", result.User.Username)
			assert.NotEmpty(t, result.Token)

			stored, err := repos.User.GetByID(ctx, result.User.ID)
			require.NoError(t, err)
			assert.NotNil(t, stored.LastLoginAt)

			_, err = repos.Session.GetByID(ctx, result.Session.ID)
			assert.NoError(t, err)
		})
	}
}

func TestAuthService_CurrentSessionUser(t *testing.T) {
	cfg := testutil.TestConfig()
	services, _, testDB := testutil.NewTestServices(t, cfg)
	ctx := context.Background()

	now := time.Now()
	services.WithClock(func() time.Time { return now })

	user, rawPassword := testutil.NewUserBuilder().Build(t, testDB.DB)
	login := func(t *testing.T) *service.AuthResult {
		result, err := services.Auth.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
		require.NoError(t, err)
		return result
	}

	t.Run("valid token", func(t *testing.T) {
		result := login(t)

		resolved, session, err := services.Auth.CurrentSessionUser(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
		assert.Equal(t, result.Session.ID, session.ID)
	})

	t.Run("empty and malformed tokens", func(t *testing.T) {
		for _, token := range []string{"", "not-a-jwt", uuid.NewString()} {
			_, _, err := services.Auth.CurrentSessionUser(ctx, token)
			assert.ErrorIs(t, err, service.ErrNotAuthenticated, token)
		}
	})

	t.Run("logged out session", func(t *testing.T) {
		result := login(t)
		require.NoError(t, services.Auth.Logout(ctx, result.Session.ID))

		_, _, err := services.Auth.CurrentSessionUser(ctx, result.Token)
		assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	})

	t.Run("session expires after its ttl", func(t *testing.T) {
		result := login(t)

		now = now.Add(cfg.SessionTTL + time.Second)
		t.Cleanup(func() { now = time.Now() })

		_, _, err := services.Auth.CurrentSessionUser(ctx, result.Token)
		assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	})

	t.Run("revoked sessions", func(t *testing.T) {
		result := login(t)
		require.NoError(t, services.Auth.RevokeUserSessions(ctx, user.ID))

		_, _, err := services.Auth.CurrentSessionUser(ctx, result.Token)
		assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	})
}

func TestAuthService_TokenSignedWithOtherSecret(t *testing.T) {
	cfg := testutil.TestConfig()
	services, repos, testDB := testutil.NewTestServices(t, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, testDB.DB)

	otherCfg := testutil.TestConfig()
	otherCfg.SessionSecret = "a-different-secret"
	other, err := service.NewServices(repos, otherCfg, testutil.TestLogger())
	require.NoError(t, err)

	result, err := other.Auth.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
	require.NoError(t, err)

	_, _, err = services.Auth.CurrentSessionUser(ctx, result.Token)
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
}
