package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/email"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// PasswordResetTTL is how long a password reset link stays valid
const PasswordResetTTL = time.Hour

// AuthService handles authentication operations
type AuthService struct {
	repos       *repositories.Repositories
	tx          repositories.TxManager
	jwtService  *auth.JWTService
	mailer      email.Sender
	frontendURL string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repos *repositories.Repositories,
	tx repositories.TxManager,
	jwtService *auth.JWTService,
	mailer email.Sender,
	frontendURL string,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		repos:       repos,
		tx:          tx,
		jwtService:  jwtService,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
		now:         time.Now,
	}
}

// Authenticate verifies credentials. The identifier is tried as an email
// first and, when it has no "@", as a username.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.repos.Users.GetByEmail(ctx, identifier)
	if errors.Is(err, apperrors.ErrUserNotFound) && !strings.Contains(identifier, "@") {
		user, err = s.repos.Users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return user, nil
}

// Login authenticates a user and issues a token pair carrying the resolved role
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.Authenticate(ctx, req.LoginIdentifier(), req.Password)
	if err != nil {
		outcome := "invalid"
		if errors.Is(err, apperrors.ErrAccountDisabled) {
			outcome = "disabled"
		}
		metrics.LoginAttempts.WithLabelValues(outcome).Inc()
		return nil, err
	}

	now := s.now()
	if err := s.repos.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	role, extras, err := s.resolveRole(ctx, s.repos, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
		Staff:  user.HasAdminFlags(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User logged in")

	userResp := dto.NewUserResponse(user, role)
	userResp.Profile = extras
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: userResp,
	}, nil
}

// resolveRole determines the user's role from linked records, the stored
// profile and account flags, then saves the profile so it matches.
func (s *AuthService) resolveRole(ctx context.Context, repos *repositories.Repositories, user *models.User) (models.Role, *dto.ProfileExtras, error) {
	faculty, err := repos.Faculty.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return "", nil, fmt.Errorf("failed to load faculty record: %w", err)
	}
	student, err := repos.Students.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return "", nil, fmt.Errorf("failed to load student record: %w", err)
	}
	profile, err := repos.Profiles.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return "", nil, fmt.Errorf("failed to load profile: %w", err)
	}

	src := appauth.RoleSources{
		FacultyLinked: faculty != nil,
		StudentLinked: student != nil,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
	}
	if profile != nil {
		stored := profile.Role
		src.ProfileRole = &stored
	}
	role := appauth.ResolveRole(src)

	if profile == nil || !profile.Consistent() || profile.Role != role {
		if err := repos.Profiles.Upsert(ctx, models.NewProfile(user.ID, role)); err != nil {
			return "", nil, fmt.Errorf("failed to save profile: %w", err)
		}
	}

	var extras *dto.ProfileExtras
	switch {
	case role == models.RoleFaculty && faculty != nil:
		id := faculty.ID
		extras = &dto.ProfileExtras{
			FacultyID:      &id,
			Name:           faculty.Name,
			Organization:   faculty.OrganizationName,
			OrganizationID: faculty.OrganizationID,
		}
	case role == models.RoleStudent && student != nil:
		extras = &dto.ProfileExtras{
			StudentID:      student.StudentID,
			Name:           student.Name,
			Organization:   student.OrganizationName,
			OrganizationID: student.OrganizationID,
			ClassName:      student.ClassName,
			ClassID:        student.ClassID,
			Section:        student.SectionName,
			SectionID:      student.SectionID,
		}
	}
	return role, extras, nil
}

// RefreshToken issues a new access token for a valid, unrevoked refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repos.Tokens.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	access, expiresIn, err := s.jwtService.GenerateAccessToken(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   claims.Role,
		Staff:  user.HasAdminFlags(),
	})
	if err != nil {
		return nil, err
	}
	return &dto.RefreshTokenResponse{AccessToken: access, TokenType: "Bearer", ExpiresIn: expiresIn}, nil
}

// Logout revokes the caller's refresh token
func (s *AuthService) Logout(ctx context.Context, callerID int64, refreshToken string) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
	if claims.UserID != callerID {
		return fmt.Errorf("%w: token belongs to another user", apperrors.ErrTokenInvalid)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.repos.Tokens.Blacklist(ctx, claims.ID, claims.UserID, expiresAt); err != nil {
		if errors.Is(err, apperrors.ErrTokenRevoked) {
			return fmt.Errorf("%w: token already revoked", apperrors.ErrTokenInvalid)
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info().Int64("userID", callerID).Msg("User logged out")
	return nil
}

// CurrentUserInfo returns the user and the role stored on their profile
func (s *AuthService) CurrentUserInfo(ctx context.Context, userID int64) (*dto.UserInfoResponse, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var role models.Role
	profile, err := s.repos.Profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		role = profile.Role
	case errors.Is(err, apperrors.ErrResourceNotFound) && user.IsSuperuser:
		role = models.RoleAdmin
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return nil, apperrors.NewCustomError(apperrors.ErrNoProfile, "User profile not found").
			WithDetail("userId", userID)
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &dto.UserInfoResponse{User: dto.NewUserResponse(user, role), Role: role}, nil
}

// RequestPasswordReset emails a single-use reset link. Unknown addresses are
// ignored without an error.
func (s *AuthService) RequestPasswordReset(ctx context.Context, address string) error {
	user, err := s.repos.Users.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Str("email", models.NormalizeEmail(address)).Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := auth.GenerateOpaqueToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	record := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(token),
		ExpiresAt: s.now().Add(PasswordResetTTL),
	}
	if err := s.repos.PasswordResets.Create(ctx, record); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password-reset-confirm/%s", s.frontendURL, token)
	name := user.FullName()
	if name == "" {
		name = user.Email
	}
	err = s.mailer.Send(ctx, email.PasswordResetMessage(user.Email, name, resetURL))
	metrics.ObserveEmail("password_reset", err)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
	}
	return nil
}

// ConfirmPasswordReset sets a new password using a reset token
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		record, err := repos.PasswordResets.GetByHash(ctx, auth.HashToken(token))
		if err != nil {
			return err
		}
		if !record.Usable(s.now()) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		if err := repos.Users.UpdatePassword(ctx, record.UserID, hash); err != nil {
			return err
		}
		return repos.PasswordResets.MarkUsed(ctx, record.ID)
	})
}
