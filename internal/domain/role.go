package domain

// UserRole is the authorization level of an account
type UserRole string

const (
	RoleEmployee   UserRole = "employee"
	RoleAdmin      UserRole = "admin"
	RoleSuperadmin UserRole = "superadmin"
)

// AllRoles contains all valid roles from least to most privileged
var AllRoles = []UserRole{RoleEmployee, RoleAdmin, RoleSuperadmin}

// IsValid checks if a role is valid
func (r UserRole) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is true for admin and superadmin
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// String returns the string representation of the role
func (r UserRole) String() string {
	return string(r)
}

// DisplayName returns a user-friendly display name for the role
func (r UserRole) DisplayName() string {
	switch r {
	case RoleEmployee:
		return "Employee"
	case RoleAdmin:
		return "Administrator"
	case RoleSuperadmin:
		return "Super Administrator"
	default:
		return string(r)
	}
}
