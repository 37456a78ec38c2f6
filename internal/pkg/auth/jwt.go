package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	TokenIssuer     string
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Claims defines JWT token content. Both token types carry the resolved role.
type Claims struct {
	UserID    int64       `json:"userId"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Staff     bool        `json:"staff,omitempty"`
	TokenType TokenType   `json:"tokenType"`
	jwt.RegisteredClaims
}

// Subject identifies the user a token was issued to.
type Subject struct {
	UserID int64
	Email  string
	Role   models.Role
	Staff  bool // is_staff or is_superuser at issue time
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshExpiresIn int64
}

// GenerateTokenPair creates access and refresh token pair
func (s *JWTService) GenerateTokenPair(sub Subject) (*TokenPair, error) {
	access, err := s.sign(sub, AccessToken, s.config.AccessTokenExp)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	refresh, err := s.sign(sub, RefreshToken, s.config.RefreshTokenExp)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int64(s.config.AccessTokenExp.Seconds()),
		RefreshExpiresIn: int64(s.config.RefreshTokenExp.Seconds()),
	}, nil
}

// GenerateAccessToken issues a new access token only.
func (s *JWTService) GenerateAccessToken(sub Subject) (string, int64, error) {
	token, err := s.sign(sub, AccessToken, s.config.AccessTokenExp)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create access token: %w", err)
	}
	return token, int64(s.config.AccessTokenExp.Seconds()), nil
}

func (s *JWTService) sign(sub Subject, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:    sub.UserID,
		Email:     sub.Email,
		Role:      sub.Role,
		Staff:     sub.Staff,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(sub.UserID, 10),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// ValidateToken parses and verifies a token of any type
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// ValidateAccessToken validates a token and requires it to be an access token
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateType(tokenString, AccessToken)
}

// ValidateRefreshToken validates a token and requires it to be a refresh token
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateType(tokenString, RefreshToken)
}

func (s *JWTService) validateType(tokenString string, typ TokenType) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: expected %s token", apperrors.ErrTokenInvalid, typ)
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", apperrors.ErrInvalidFormat
	}

	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:]), nil
	}
	if strings.Contains(authHeader, " ") {
		return "", apperrors.ErrInvalidFormat
	}
	return authHeader, nil
}
