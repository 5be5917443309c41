// Package password holds the password lifecycle rules: expiry arithmetic,
// the canonical format policy, temporary password generation, hashing and
// reuse history. Everything time-dependent takes now as an argument.
package password

import "time"

// Day is the unit expiry periods are expressed in.
const Day = 24 * time.Hour

// ExpiresAt returns the instant a password changed at changedAt stops being valid.
func ExpiresAt(changedAt time.Time, expiryDays int) time.Time {
	return changedAt.Add(time.Duration(expiryDays) * Day)
}

// IsExpired reports whether now is strictly after the expiry instant.
// A password is still valid at the exact expiry instant.
func IsExpired(changedAt time.Time, expiryDays int, now time.Time) bool {
	return now.After(ExpiresAt(changedAt, expiryDays))
}

// DaysUntilExpiry returns ceil((expiry - now) / 1 day). The result is
// negative once the password is overdue; callers treat <= 0 as expired or
// expiring today.
func DaysUntilExpiry(changedAt time.Time, expiryDays int, now time.Time) int {
	remaining := ExpiresAt(changedAt, expiryDays).Sub(now)
	days := remaining / Day
	if remaining%Day > 0 {
		days++
	}
	return int(days)
}

// RequiresChange is the gate consulted before any non-password resource.
func RequiresChange(mustChange, expired bool) bool {
	return mustChange || expired
}

// ShouldWarn reports whether a pre-expiry warning banner is due.
func ShouldWarn(daysUntilExpiry, warningDays int) bool {
	return daysUntilExpiry > 0 && daysUntilExpiry <= warningDays
}

// Status is the read-only projection of a user's password state.
type Status struct {
	MustChangePassword bool      `json:"mustChangePassword"`
	IsExpired          bool      `json:"isExpired"`
	DaysUntilExpiry    int       `json:"daysUntilExpiry"`
	PasswordExpiryDays int       `json:"passwordExpiryDays"`
	ExpiresAt          time.Time `json:"expiresAt"`
	ShouldWarn         bool      `json:"shouldWarn"`
	RequiresChange     bool      `json:"requiresChange"`
}

// Evaluate computes the full Status for the given lifecycle fields.
func Evaluate(changedAt time.Time, expiryDays int, mustChange bool, warningDays int, now time.Time) Status {
	expired := IsExpired(changedAt, expiryDays, now)
	days := DaysUntilExpiry(changedAt, expiryDays, now)
	return Status{
		MustChangePassword: mustChange,
		IsExpired:          expired,
		DaysUntilExpiry:    days,
		PasswordExpiryDays: expiryDays,
		ExpiresAt:          ExpiresAt(changedAt, expiryDays),
		ShouldWarn:         ShouldWarn(days, warningDays),
		RequiresChange:     RequiresChange(mustChange, expired),
	}
}
