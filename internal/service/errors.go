package service

import (
	"errors"
	"fmt"
)

// Authentication and authorization outcomes
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrPasswordChangeRequired = errors.New("password change required")
	ErrForbidden              = errors.New("forbidden")
	ErrInsufficientRole       = fmt.Errorf("%w: insufficient role", ErrForbidden)
	ErrNotOwner               = fmt.Errorf("%w: not the owner", ErrForbidden)
	ErrProtectedAccount       = fmt.Errorf("%w: protected account", ErrForbidden)
)

// Credential and account errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameExists       = errors.New("username already exists")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrCredentialConflict   = errors.New("credentials were changed concurrently")
	ErrInvalidExpiryDays    = errors.New("password expiry days must be between 1 and 365")
)

// Menu errors
var (
	ErrDishNotFound = errors.New("dish not found")
)
