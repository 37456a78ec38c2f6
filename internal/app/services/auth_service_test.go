package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "jane@x.com", "Secret123!", models.RoleStudent, func(u *models.User) { u.Username = ptr("jane") })
	env.createUser(t, "off@x.com", "Secret123!", models.RoleStudent, func(u *models.User) { u.IsActive = false })

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{"email", "jane@x.com", "Secret123!", nil},
		{"email is case-insensitive", "  JANE@X.COM ", "Secret123!", nil},
		{"username fallback", "jane", "Secret123!", nil},
		{"wrong password", "jane@x.com", "nope", apperrors.ErrInvalidCredentials},
		{"unknown user", "ghost@x.com", "Secret123!", apperrors.ErrUserNotFound},
		{"empty identifier", "", "Secret123!", apperrors.ErrInvalidCredentials},
		{"inactive", "off@x.com", "Secret123!", apperrors.ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := env.auth.Authenticate(context.Background(), tt.identifier, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "jane@x.com", u.Email)
		})
	}
}

func TestLogin_ResolvesRoleAndProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("superuser without profile becomes admin", func(t *testing.T) {
		u := env.createUser(t, "root@x.com", "Secret123!", "", func(u *models.User) { u.IsSuperuser = true })
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "root@x.com", Password: "Secret123!"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, resp.User.Role)
		assert.Equal(t, "Bearer", resp.Token.TokenType)

		claims, err := env.jwt.ValidateAccessToken(resp.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, claims.Role)
		assert.True(t, claims.Staff)

		p, err := env.repos.Profiles.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, p.Role)
		assert.True(t, p.Consistent())

		stored, err := env.repos.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLogin)
	})

	t.Run("faculty link overrides stored profile", func(t *testing.T) {
		u := env.createUser(t, "prof@x.com", "Secret123!", models.RoleStudent)
		org := env.store.AddOrganization(models.Organization{Name: "Main Campus"})
		facID := env.store.AddFaculty(models.Faculty{UserID: &u.ID, OrganizationID: &org, Name: "Prof X"})

		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "prof@x.com", Password: "Secret123!"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleFaculty, resp.User.Role)
		require.NotNil(t, resp.User.Profile)
		assert.Equal(t, facID, *resp.User.Profile.FacultyID)
		assert.Equal(t, "Main Campus", resp.User.Profile.Organization)

		p, err := env.repos.Profiles.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleFaculty, p.Role)
		assert.True(t, p.IsFaculty)
		assert.False(t, p.IsStudent)
	})
}

func TestResolveRole_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "x@x.com", "Secret123!", "", func(u *models.User) { u.IsStaff = true })

	role1, _, err := env.auth.resolveRole(ctx, env.repos, u)
	require.NoError(t, err)
	p1, err := env.repos.Profiles.GetByUserID(ctx, u.ID)
	require.NoError(t, err)

	role2, _, err := env.auth.resolveRole(ctx, env.repos, u)
	require.NoError(t, err)
	p2, err := env.repos.Profiles.GetByUserID(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, role1, role2)
	assert.Equal(t, p1.ID, p2.ID)
	_, profiles, _ := env.store.Counts()
	assert.Equal(t, 1, profiles)
}

func TestRefreshLogoutRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "jane@x.com", "Secret123!", models.RoleStudent)

	login, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "jane@x.com", Password: "Secret123!"})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshToken(ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	claims, err := env.jwt.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)

	_, err = env.auth.RefreshToken(ctx, login.Token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	assert.ErrorIs(t, env.auth.Logout(ctx, u.ID+1, login.Token.RefreshToken), apperrors.ErrTokenInvalid)
	require.NoError(t, env.auth.Logout(ctx, u.ID, login.Token.RefreshToken))
	assert.ErrorIs(t, env.auth.Logout(ctx, u.ID, login.Token.RefreshToken), apperrors.ErrTokenInvalid)

	_, err = env.auth.RefreshToken(ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestCurrentUserInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fac := env.createUser(t, "f@x.com", "Secret123!", models.RoleFaculty)
	info, err := env.auth.CurrentUserInfo(ctx, fac.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, info.Role)
	assert.Equal(t, "f@x.com", info.User.Email)

	root := env.createUser(t, "root@x.com", "Secret123!", "", func(u *models.User) { u.IsSuperuser = true })
	info, err = env.auth.CurrentUserInfo(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)

	bare := env.createUser(t, "bare@x.com", "Secret123!", "")
	_, err = env.auth.CurrentUserInfo(ctx, bare.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoProfile)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "jane@x.com", "OldSecret1!", models.RoleStudent)

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "ghost@x.com"))
	assert.Empty(t, env.mail.Messages())

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "jane@x.com"))
	sent := env.mail.SentTo("jane@x.com")
	require.Len(t, sent, 1)

	const marker = "/password-reset-confirm/"
	idx := strings.Index(sent[0].Body, marker)
	require.GreaterOrEqual(t, idx, 0)
	token := strings.Fields(sent[0].Body[idx+len(marker):])[0]

	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, token, "NewSecret1!"))
	_, err := env.auth.Authenticate(ctx, "jane@x.com", "NewSecret1!")
	require.NoError(t, err)

	err = env.auth.ConfirmPasswordReset(ctx, token, "Another1!")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
}

func TestPasswordReset_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "jane@x.com", "OldSecret1!", models.RoleStudent)

	token := "expired-token"
	require.NoError(t, env.repos.PasswordResets.Create(ctx, &models.PasswordResetToken{
		UserID:    u.ID,
		TokenHash: auth.HashToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	err := env.auth.ConfirmPasswordReset(ctx, token, "NewSecret1!")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
}
