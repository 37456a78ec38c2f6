package auth

import (
	"testing"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "registration-test",
	})
}

func TestGenerateTokenPair_CarriesRole(t *testing.T) {
	svc := newTestJWT()
	sub := Subject{UserID: 7, Email: "jane@x.com", Role: models.RoleFaculty}

	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.Equal(t, int64(86400), pair.RefreshExpiresIn)

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), access.UserID)
	assert.Equal(t, models.RoleFaculty, access.Role)
	assert.Equal(t, "7", access.Subject)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, refresh.Role)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestValidateToken_TypeMismatch(t *testing.T) {
	svc := newTestJWT()
	pair, err := svc.GenerateTokenPair(Subject{UserID: 1, Email: "a@x.com", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWT()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	pair, err := svc.GenerateTokenPair(Subject{UserID: 1, Email: "a@x.com", Role: models.RoleStudent})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := newTestJWT()
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, RefreshTokenExp: time.Hour})
	foreign, err := other.GenerateTokenPair(Subject{UserID: 1, Email: "a@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, TokenType: AccessToken})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", foreign.AccessToken},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"bearer abc.def", "abc.def", false},
		{"abc.def", "abc.def", false},
		{"", "", true},
		{"Basic dXNlcg== extra", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
