package config_test

import (
	"testing"
	"time"

	"github.com/dom/lunch-order-website/internal/config"
	"github.com/dom/lunch-order-website/internal/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, config.SessionBackendPostgres, cfg.SessionBackend)
	assert.Equal(t, 120, cfg.PasswordDefaultExpiryDays)
	assert.Equal(t, 14, cfg.PasswordWarningDays)
	assert.Equal(t, 8, cfg.TemporaryPasswordLength)
	assert.Equal(t, 0, cfg.PasswordHistoryCount)

	policy, err := cfg.PasswordPolicy()
	require.NoError(t, err)
	assert.Equal(t, 8, policy.MinLength)
	assert.Equal(t, password.MaxBcryptBytes, policy.MaxLength)
	assert.Equal(t, 2, policy.RequiredClasses)
	assert.Len(t, policy.Classes, 2)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("PASSWORD_CLASS_SET", "four-class")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("PASSWORD_REQUIRED_CLASSES", "3")
	t.Setenv("TEMP_PASSWORD_LENGTH", "12")
	t.Setenv("TEMP_PASSWORD_ALPHABET", "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%")
	t.Setenv("PASSWORD_HISTORY_COUNT", "5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, 5, cfg.PasswordHistoryCount)

	gen, err := cfg.TemporaryPasswordGenerator()
	require.NoError(t, err)
	assert.Equal(t, 12, gen.Length())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "unknown backend", env: map[string]string{"SESSION_BACKEND": "memcached"}},
		{name: "expiry out of range", env: map[string]string{"PASSWORD_DEFAULT_EXPIRY_DAYS": "400"}},
		{name: "unknown class set", env: map[string]string{"PASSWORD_CLASS_SET": "emoji"}},
		{name: "generator shorter than policy", env: map[string]string{"PASSWORD_MIN_LENGTH": "12"}},
		{name: "too many required classes", env: map[string]string{"PASSWORD_REQUIRED_CLASSES": "3"}},
		{name: "max length beyond bcrypt", env: map[string]string{"PASSWORD_MAX_LENGTH": "100"}},
		{name: "min above max", env: map[string]string{"PASSWORD_MAX_LENGTH": "10", "PASSWORD_MIN_LENGTH": "12", "TEMP_PASSWORD_LENGTH": "12"}},
		{name: "temporary password longer than max", env: map[string]string{"PASSWORD_MAX_LENGTH": "16", "TEMP_PASSWORD_LENGTH": "20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name != "missing secret" {
				t.Setenv("SESSION_SECRET", "secret")
			} else {
				t.Setenv("SESSION_SECRET", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
