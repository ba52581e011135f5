package enums

import (
	"fmt"
	"strings"
)

// UserRole represents an admin account's permission level.
type UserRole string

const (
	RoleSystemAdmin UserRole = "SystemAdmin"
	RoleCafeAdmin   UserRole = "CafeAdmin"
)

var validUserRoles = []UserRole{
	RoleSystemAdmin,
	RoleCafeAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole. Matching is
// case-insensitive to keep parity with clients that send "systemadmin".
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
