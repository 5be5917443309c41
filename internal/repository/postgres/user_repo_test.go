package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/dom/lunch-order-website/internal/repository/postgres"
	"github.com/dom/lunch-order-website/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(username string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:                 uuid.New(),
		Username:           username,
		PasswordHash:       "hashedpassword",
		Role:               domain.RoleEmployee,
		IsActive:           true,
		PasswordChangedAt:  now,
		PasswordExpiryDays: 120,
		PasswordHistory:    []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: newUser("testuser"),
		},
		{
			name:    "duplicate username",
			user:    newUser("testuser"), // Same as above
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("alice").Build(t, testDB.DB)

	found, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, domain.RoleEmployee, found.Role)
	assert.True(t, found.IsActive)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateCredentials(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	changedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		expectedHash func(user *domain.User) string
		wantErr      error
	}{
		{
			name:         "matching hash is replaced",
			expectedHash: func(user *domain.User) string { return user.PasswordHash },
		},
		{
			name:         "stale hash is rejected",
			expectedHash: func(user *domain.User) string { return "not-the-current-hash" },
			wantErr:      repository.ErrStaleWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			user, _ := testutil.NewUserBuilder().MustChangePassword().Build(t, testDB.DB)

			err := repo.UpdateCredentials(ctx, user.ID, tt.expectedHash(user), repository.CredentialUpdate{
				PasswordHash:       "newhash",
				PasswordChangedAt:  changedAt,
				MustChangePassword: false,
				PasswordHistory:    []string{user.PasswordHash},
			})

			stored, getErr := repo.GetByID(ctx, user.ID)
			require.NoError(t, getErr)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, user.PasswordHash, stored.PasswordHash)
				assert.True(t, stored.MustChangePassword)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "newhash", stored.PasswordHash)
			assert.False(t, stored.MustChangePassword)
			assert.True(t, changedAt.Equal(stored.PasswordChangedAt))
			assert.Equal(t, []string{user.PasswordHash}, []string(stored.PasswordHistory))
		})
	}
}

func TestUserRepository_UpdateColumns(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	loginAt := time.Now().Truncate(time.Second)

	require.NoError(t, repo.UpdateRole(ctx, user.ID, domain.RoleAdmin))
	require.NoError(t, repo.UpdateActive(ctx, user.ID, false))
	require.NoError(t, repo.UpdatePasswordExpiryDays(ctx, user.ID, 30))
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, loginAt))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 30, stored.PasswordExpiryDays)
	require.NotNil(t, stored.LastLoginAt)
	assert.True(t, loginAt.Equal(*stored.LastLoginAt))

	assert.ErrorIs(t, repo.UpdateRole(ctx, uuid.New(), domain.RoleAdmin), gorm.ErrRecordNotFound)
}

func TestUserRepository_CountByRoleAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewUserBuilder().AsSuperadmin().Build(t, testDB.DB)
	employee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	count, err := repo.CountByRole(ctx, domain.RoleSuperadmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(ctx, employee.ID))
	assert.ErrorIs(t, repo.Delete(ctx, employee.ID), gorm.ErrRecordNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
