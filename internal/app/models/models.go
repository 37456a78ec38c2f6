package models

import "strings"

// Role is the primary authorization axis.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// IsValid reports whether r is one of the three known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// CanRegister reports whether r may be requested through a public registration.
func (r Role) CanRegister() bool {
	return r == RoleStudent || r == RoleFaculty
}

// Title returns the capitalized role name used in notifications.
func (r Role) Title() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseRole normalizes s and reports whether it names a valid role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}
