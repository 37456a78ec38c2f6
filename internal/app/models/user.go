package models

import (
	"strings"
	"time"
)

// User defines the credential record stored in the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Email        string     `json:"email" db:"email" example:"jane@example.com"` // Identity key, stored lower-cased
	Username     *string    `json:"username,omitempty" db:"username" example:"jane"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName     string     `json:"lastName" db:"last_name" example:"Doe"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	IsStaff      bool       `json:"isStaff" db:"is_staff" example:"false"`
	IsSuperuser  bool       `json:"isSuperuser" db:"is_superuser" example:"false"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	DateJoined   time.Time  `json:"dateJoined" db:"date_joined"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasAdminFlags reports whether the account carries staff or superuser rights.
func (u *User) HasAdminFlags() bool {
	return u.IsStaff || u.IsSuperuser
}

// UsernameOrEmpty dereferences Username.
func (u *User) UsernameOrEmpty() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitName splits a full name on the first space: the first token is the
// first name, the remainder (possibly empty) the last name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	parts := strings.SplitN(name, " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
