package enums

import "fmt"

// UserRole is the flat role carried on every user row.
type UserRole string

const (
	UserRoleUser         UserRole = "user"
	UserRoleVillageAdmin UserRole = "village_admin"
	UserRoleAdmin        UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleVillageAdmin,
	UserRoleAdmin,
}

// IsValid reports whether the value matches the canonical user role enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// ParseUserRole converts the raw string to UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
