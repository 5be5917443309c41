package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username   string
	password   string
	role       domain.UserRole
	active     bool
	mustChange bool
	changedAt  time.Time
	expiryDays int
	history    []string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username:   fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:   "testpassword123",
		role:       domain.RoleEmployee,
		active:     true,
		changedAt:  time.Now(),
		expiryDays: 120,
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithRole sets the role
func (b *UserBuilder) WithRole(role domain.UserRole) *UserBuilder {
	b.role = role
	return b
}

// AsAdmin is shorthand for WithRole(domain.RoleAdmin)
func (b *UserBuilder) AsAdmin() *UserBuilder {
	return b.WithRole(domain.RoleAdmin)
}

// AsSuperadmin is shorthand for WithRole(domain.RoleSuperadmin)
func (b *UserBuilder) AsSuperadmin() *UserBuilder {
	return b.WithRole(domain.RoleSuperadmin)
}

// Inactive marks the account deactivated
func (b *UserBuilder) Inactive() *UserBuilder {
	b.active = false
	return b
}

// MustChangePassword sets the forced-change flag
func (b *UserBuilder) MustChangePassword() *UserBuilder {
	b.mustChange = true
	return b
}

// WithPasswordChangedAt sets when the password was last changed
func (b *UserBuilder) WithPasswordChangedAt(at time.Time) *UserBuilder {
	b.changedAt = at
	return b
}

// WithExpiryDays sets the password expiry period
func (b *UserBuilder) WithExpiryDays(days int) *UserBuilder {
	b.expiryDays = days
	return b
}

// WithHistory sets previously used plaintext passwords, hashed on Build
func (b *UserBuilder) WithHistory(previous ...string) *UserBuilder {
	b.history = previous
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	history := make([]string, 0, len(b.history))
	for _, previous := range b.history {
		h, err := bcrypt.GenerateFromPassword([]byte(previous), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		history = append(history, string(h))
	}

	user := &domain.User{
		ID:                 uuid.New(),
		Username:           b.username,
		PasswordHash:       string(hashedPassword),
		Role:               b.role,
		IsActive:           true,
		PasswordChangedAt:  b.changedAt,
		PasswordExpiryDays: b.expiryDays,
		MustChangePassword: b.mustChange,
		PasswordHistory:    history,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// gorm skips zero-value bools that carry a column default
	if !b.active {
		if err := db.Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate user: %v", err)
		}
		user.IsActive = false
	}

	return user, b.password
}

// AuthResponse matches the API login response
type AuthResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
	Token          string `json:"token"`
	PasswordStatus struct {
		MustChangePassword bool `json:"mustChangePassword"`
		IsExpired          bool `json:"isExpired"`
		DaysUntilExpiry    int  `json:"daysUntilExpiry"`
		RequiresChange     bool `json:"requiresChange"`
	} `json:"passwordStatus"`
}

// BuildAndAuthenticate creates the user in the database, logs in via the API
// and returns the user and session token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, rawPassword := b.Build(t, ts.DB.DB)
	return user, Login(t, ts, user.Username, rawPassword)
}

// Login authenticates via the API and returns the session token
func Login(t *testing.T, ts *TestServer, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return authResp.Token
}

// DishBuilder creates test dishes
type DishBuilder struct {
	name      string
	imagePath string
	menuDate  datatypes.Date
	creator   *domain.User
}

// NewDishBuilder creates a new DishBuilder for today's menu
func NewDishBuilder() *DishBuilder {
	today, _ := domain.ParseMenuDate(time.Now().Format(domain.MenuDateLayout))
	return &DishBuilder{
		name:      fmt.Sprintf("Dish %s", uuid.New().String()[:6]),
		imagePath: "/images/dishes/test.jpg",
		menuDate:  today,
	}
}

// WithName sets the dish name
func (b *DishBuilder) WithName(name string) *DishBuilder {
	b.name = name
	return b
}

// OnDate sets the menu date, YYYY-MM-DD
func (b *DishBuilder) OnDate(t *testing.T, day string) *DishBuilder {
	t.Helper()
	date, err := domain.ParseMenuDate(day)
	if err != nil {
		t.Fatalf("invalid menu date %q: %v", day, err)
	}
	b.menuDate = date
	return b
}

// WithCreator sets the admin who added the dish
func (b *DishBuilder) WithCreator(user *domain.User) *DishBuilder {
	b.creator = user
	return b
}

// Build creates the dish in the database
func (b *DishBuilder) Build(t *testing.T, db *gorm.DB) *domain.Dish {
	t.Helper()

	if b.creator == nil {
		admin, _ := NewUserBuilder().AsAdmin().Build(t, db)
		b.creator = admin
	}

	dish := &domain.Dish{
		ID:        uuid.New(),
		Name:      b.name,
		ImagePath: b.imagePath,
		MenuDate:  b.menuDate,
		CreatedBy: b.creator.ID,
		CreatedAt: time.Now(),
	}

	if err := db.Create(dish).Error; err != nil {
		t.Fatalf("failed to create dish: %v", err)
	}

	return dish
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends an authenticated request and fails the test on transport errors
func Do(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
