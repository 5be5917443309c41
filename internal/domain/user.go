package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID                 uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username           string                      `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash       string                      `json:"-" gorm:"not null"`
	Role               UserRole                    `json:"role" gorm:"not null;default:'employee'"`
	IsActive           bool                        `json:"isActive" gorm:"not null;default:true"`
	PasswordChangedAt  time.Time                   `json:"passwordChangedAt" gorm:"not null"`
	PasswordExpiryDays int                         `json:"passwordExpiryDays" gorm:"not null;default:120"`
	MustChangePassword bool                        `json:"mustChangePassword" gorm:"not null;default:false"`
	PasswordHistory    datatypes.JSONSlice[string] `json:"-" gorm:"type:jsonb"`
	LastLoginAt        *time.Time                  `json:"lastLoginAt"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

// IsAdmin reports whether the user may reach admin-gated resources.
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

type UserSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is no longer usable at now.
func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
