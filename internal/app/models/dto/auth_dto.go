package dto

import "github.com/alagappainfotech/student-registration-app/internal/app/models"

// LoginRequest represents login credentials. Identifier may be an email or a
// username; Email is accepted as an alias for older clients.
type LoginRequest struct {
	Identifier string `json:"identifier" example:"jane@example.com"`
	Email      string `json:"email,omitempty" example:"jane@example.com"`
	Password   string `json:"password" binding:"required" example:"S3cure!Passw0rd"`
}

// LoginIdentifier returns the identifier, falling back to Email.
func (r LoginRequest) LoginIdentifier() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Email
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"86400"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse carries the new access token
type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"3600"`
}

// LogoutRequest carries the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ProfileExtras is the role-specific snapshot returned at login.
type ProfileExtras struct {
	FacultyID      *int64 `json:"facultyId,omitempty"`
	StudentID      string `json:"studentId,omitempty"`
	Name           string `json:"name,omitempty"`
	Organization   string `json:"organization,omitempty"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
	ClassName      string `json:"className,omitempty"`
	ClassID        *int64 `json:"classId,omitempty"`
	Section        string `json:"section,omitempty"`
	SectionID      *int64 `json:"sectionId,omitempty"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          int64          `json:"id" example:"1"`
	Username    string         `json:"username,omitempty"`
	Email       string         `json:"email" example:"jane@example.com"`
	FirstName   string         `json:"firstName" example:"Jane"`
	LastName    string         `json:"lastName" example:"Doe"`
	IsStaff     bool           `json:"isStaff"`
	IsSuperuser bool           `json:"isSuperuser"`
	Role        models.Role    `json:"role" example:"student"`
	Profile     *ProfileExtras `json:"profile,omitempty"`
}

// NewUserResponse builds a UserResponse for u with the given role
func NewUserResponse(u *models.User, role models.Role) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.UsernameOrEmpty(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Role:        role,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// UserInfoResponse is returned by the user-info endpoint
type UserInfoResponse struct {
	User UserResponse `json:"user"`
	Role models.Role  `json:"role" example:"admin"`
}

// PasswordResetRequest starts a password reset
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest completes a password reset
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
