package auth

import (
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	pkgauth "github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
)

// Caller is the authenticated principal of a request, taken from its access token.
type Caller struct {
	UserID int64
	Email  string
	Role   models.Role
	Staff  bool
}

// CallerFromClaims builds a Caller from validated access token claims.
func CallerFromClaims(claims *pkgauth.Claims) Caller {
	return Caller{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Staff:  claims.Staff,
	}
}

// IsAdmin reports whether the caller holds the admin role or staff/superuser flags.
func (c Caller) IsAdmin() bool {
	return c.Staff || c.Role == models.RoleAdmin
}
