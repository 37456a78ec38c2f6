package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    dto.ErrorCode `json:"code"`
		Message string        `json:"message"`
		Field   string        `json:"field"`
		Details any           `json:"details"`
	} `json:"error"`
}

func (b errorBody) detail(key string) any {
	m, _ := b.Error.Details.(map[string]any)
	return m[key]
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"wrong password", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, InvalidCredentialsMessage},
		{"unknown user", fmt.Errorf("lookup: %w", apperrors.ErrUserNotFound), http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, InvalidCredentialsMessage},
		{"inactive", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, ""},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeTokenRevoked, ""},
		{"forbidden", apperrors.NewForbiddenError("Faculty access required"), http.StatusForbidden, dto.ErrorCodeForbidden, "Faculty access required"},
		{"no student record", apperrors.NewCustomError(apperrors.ErrNoStudentRecord, "none"), http.StatusNotFound, dto.ErrorCodeNoStudentRecord, "none"},
		{"not found", apperrors.NewResourceNotFoundError("course not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "course not found"},
		{"already processed", apperrors.NewCustomError(apperrors.ErrAlreadyProcessed, "done"), http.StatusBadRequest, dto.ErrorCodeAlreadyProcessed, "done"},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusBadRequest, dto.ErrorCodeEmailExists, ""},
		{"conflict", apperrors.NewConflictError("dup"), http.StatusConflict, dto.ErrorCodeConflict, "dup"},
		{"provisioning", apperrors.ErrProvisioningFailed, http.StatusInternalServerError, dto.ErrorCodeProvisioningFailed, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
		{"value too long", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "22001"}), http.StatusBadRequest, dto.ErrorCodeValidationFailed, ""},
		{"database failure", fmt.Errorf("query: %w", &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Database error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Error.Message)
			}
		})
	}
}

func TestHandleAPIError_Details(t *testing.T) {
	t.Run("unknown error carries an errorId", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleAPIError(c, errors.New("db down"))

		body := decodeError(t, w)
		assert.NotEmpty(t, body.detail("errorId"))
		assert.NotContains(t, w.Body.String(), "db down")
	})

	t.Run("database errors hide the server message", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleAPIError(c, &pgconn.PgError{Code: "53300", Message: "too many connections for role"})

		body := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeDatabaseError, body.Error.Code)
		assert.NotEmpty(t, body.detail("errorId"))
		assert.NotContains(t, w.Body.String(), "too many connections")
	})

	t.Run("validation error names the field", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleAPIError(c, apperrors.NewValidationError("grade", "bad grade"))

		body := decodeError(t, w)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "grade", body.Error.Field)
	})

	t.Run("profile errors carry the user id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrNoFacultyRecord, "missing").WithDetail("userId", 7))

		body := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeNoFacultyRecord, body.Error.Code)
		assert.EqualValues(t, 7, body.detail("userId"))
	})
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
}

func protectedRouter(jwt *auth.JWTService, extra ...gin.HandlerFunc) *gin.Engine {
	m := NewAuthMiddleware(jwt)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{m.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		caller, _ := GetCaller(c)
		c.JSON(http.StatusOK, gin.H{"userId": caller.UserID, "role": caller.Role})
	})
	r.GET("/me", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	pair, err := jwt.GenerateTokenPair(auth.Subject{UserID: 5, Email: "a@b.c", Role: models.RoleFaculty})
	require.NoError(t, err)
	r := protectedRouter(jwt)

	tests := []struct {
		name   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"refresh token rejected", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"valid access token", "Bearer " + pair.AccessToken, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
				return
			}
			assert.JSONEq(t, `{"userId":5,"role":"faculty"}`, w.Body.String())
		})
	}
}

func TestAdminAndRoleRequired(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt)
	token := func(sub auth.Subject) string {
		access, _, err := jwt.GenerateAccessToken(sub)
		require.NoError(t, err)
		return "Bearer " + access
	}

	tests := []struct {
		name   string
		guard  gin.HandlerFunc
		sub    auth.Subject
		status int
	}{
		{"admin role passes admin gate", m.AdminRequired(), auth.Subject{UserID: 1, Role: models.RoleAdmin}, http.StatusOK},
		{"staff flag passes admin gate", m.AdminRequired(), auth.Subject{UserID: 1, Role: models.RoleFaculty, Staff: true}, http.StatusOK},
		{"student fails admin gate", m.AdminRequired(), auth.Subject{UserID: 1, Role: models.RoleStudent}, http.StatusForbidden},
		{"faculty passes faculty gate", m.RoleRequired(models.RoleFaculty, models.RoleAdmin), auth.Subject{UserID: 1, Role: models.RoleFaculty}, http.StatusOK},
		{"student fails faculty gate", m.RoleRequired(models.RoleFaculty, models.RoleAdmin), auth.Subject{UserID: 1, Role: models.RoleStudent}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(jwt, tt.guard)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", token(tt.sub))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRecoveryAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.Nop()), Metrics(), Recovery(zerolog.Nop()))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeInternalServer, body.Error.Code)
	assert.NotEmpty(t, body.detail("errorId"))
}
