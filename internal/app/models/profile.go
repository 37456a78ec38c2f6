package models

import "time"

// Profile is the one-to-one role assignment of a user. The three flags are
// derived from Role and must never be set independently.
type Profile struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	IsAdmin   bool      `json:"isAdmin" db:"is_admin"`
	IsFaculty bool      `json:"isFaculty" db:"is_faculty"`
	IsStudent bool      `json:"isStudent" db:"is_student"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewProfile returns a profile for userID with flags matching role.
func NewProfile(userID int64, role Role) *Profile {
	p := &Profile{UserID: userID}
	p.SetRole(role)
	return p
}

// SetRole assigns role and recomputes the flags. Unknown roles become student.
func (p *Profile) SetRole(role Role) {
	if !role.IsValid() {
		role = RoleStudent
	}
	p.Role = role
	p.IsAdmin = role == RoleAdmin
	p.IsFaculty = role == RoleFaculty
	p.IsStudent = role == RoleStudent
}

// Consistent reports whether exactly one flag is set and it matches Role.
func (p *Profile) Consistent() bool {
	n := 0
	for _, f := range []bool{p.IsAdmin, p.IsFaculty, p.IsStudent} {
		if f {
			n++
		}
	}
	if n != 1 {
		return false
	}
	switch p.Role {
	case RoleAdmin:
		return p.IsAdmin
	case RoleFaculty:
		return p.IsFaculty
	case RoleStudent:
		return p.IsStudent
	}
	return false
}

// ProfileDetail is a profile joined with its user's identity.
type ProfileDetail struct {
	Profile
	Email     string  `json:"email" db:"email"`
	Username  *string `json:"username,omitempty" db:"username"`
	FirstName string  `json:"firstName" db:"first_name"`
	LastName  string  `json:"lastName" db:"last_name"`
}
