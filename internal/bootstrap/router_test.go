package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/alagappainfotech/student-registration-app/internal/app/repositories/memory"
	"github.com/alagappainfotech/student-registration-app/internal/config"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/email"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "root@portal.test"
	adminPassword = "R00t!password"
)

var tempPasswordLine = regexp.MustCompile(`Temporary password: (\S+)`)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func (a apiClient) login(identifier, password string) (access, refresh string) {
	a.t.Helper()
	w, body := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	token := body["data"].(map[string]any)["token"].(map[string]any)
	return token["accessToken"].(string), token["refreshToken"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func newTestRouter(t *testing.T) (apiClient, *email.Recorder, *Dependencies) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost

	cfg := &config.Config{}
	cfg.Server.FrontendURL = "http://portal.test"
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.AccessTokenExpiration = "15m"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "router-test"
	cfg.Email.AdminEmail = "admins@portal.test"
	cfg.Observability.MetricsEnabled = true
	cfg.Admin.Email = adminEmail
	cfg.Admin.Password = adminPassword

	store := memory.New()
	mail := email.NewRecorder()
	SeedDefaults(context.Background(), cfg, store.TxManager(), zerolog.Nop())

	deps, err := BuildDependencies(cfg, store.Repositories(), store.TxManager(), mail, zerolog.Nop())
	require.NoError(t, err)
	router := SetupRouter(cfg, deps, zerolog.Nop())
	return apiClient{t: t, router: router}, mail, deps
}

func TestRegistrationLifecycleOverHTTP(t *testing.T) {
	api, mail, deps := newTestRouter(t)

	// Public submission.
	w, body := api.do(http.MethodPost, "/api/v1/registration-request", "", map[string]any{
		"name":  "Asha Raman",
		"email": "Asha@Example.com",
		"phone": "+91 98765 43210",
		"role":  "student",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := int64(body["data"].(map[string]any)["id"].(float64))
	deps.RegistrationService.WaitNotifications()
	assert.Len(t, mail.SentTo("admins@portal.test"), 1)

	adminToken, _ := api.login(adminEmail, adminPassword)

	w, body = api.do(http.MethodGet, "/api/v1/registration-requests?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	requests := body["data"].(map[string]any)["requests"].([]any)
	assert.Len(t, requests, 1)

	path := "/api/v1/registration-requests/" + jsonNumber(requestID)
	w, body = api.do(http.MethodPost, path+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["emailSent"])
	assert.NotEmpty(t, data["studentId"])

	w, body = api.do(http.MethodPost, path+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REG_001", errorCode(body))

	sent := mail.SentTo("asha@example.com")
	require.Len(t, sent, 1)
	m := tempPasswordLine.FindStringSubmatch(sent[0].Body)
	require.Len(t, m, 2)

	studentToken, studentRefresh := api.login("asha@example.com", m[1])

	w, body = api.do(http.MethodGet, "/api/v1/dashboard/faculty", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_011", errorCode(body))

	w, _ = api.do(http.MethodGet, "/api/v1/dashboard/student", studentToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = api.do(http.MethodPost, path+"/approve", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = api.do(http.MethodGet, "/api/v1/auth/user-info", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student", body["data"].(map[string]any)["role"])

	w, _ = api.do(http.MethodPost, "/api/v1/auth/logout", studentToken, map[string]string{"refreshToken": studentRefresh})
	assert.Equal(t, http.StatusResetContent, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/logout", studentToken, map[string]string{"refreshToken": studentRefresh})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(http.MethodPost, "/api/v1/auth/token/refresh", "", map[string]string{"refreshToken": studentRefresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_010", errorCode(body))
}

func TestLoginDoesNotRevealUnknownUsers(t *testing.T) {
	api, _, _ := newTestRouter(t)

	wrongPassword, body1 := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": adminEmail, "password": "nope",
	})
	unknownUser, body2 := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "ghost@portal.test", "password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, body1["error"].(map[string]any)["message"], body2["error"].(map[string]any)["message"])
}

func TestSubmitValidation(t *testing.T) {
	api, _, _ := newTestRouter(t)

	w, body := api.do(http.MethodPost, "/api/v1/registration-request", "", map[string]any{
		"name":  "",
		"email": "not-an-email",
		"role":  "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(body))
	fields := body["error"].(map[string]any)["details"].([]any)
	assert.Len(t, fields, 3)

	tests := []struct {
		name  string
		input map[string]any
		field string
	}{
		{"whitespace name", map[string]any{"name": "   ", "email": "blank@example.com", "role": "student"}, "name"},
		{"email longer than the column", map[string]any{"name": "Long Mail", "email": strings.Repeat("a", 250) + "@example.com"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := api.do(http.MethodPost, "/api/v1/registration-request", "", tt.input)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VAL_001", errorCode(body))
			assert.Equal(t, tt.field, body["error"].(map[string]any)["field"])
		})
	}
}

func TestPublicEndpoints(t *testing.T) {
	api, _, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/health", "/ping", "/metrics"} {
		w, _ := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w, _ := api.do(http.MethodGet, "/api/v1/registration-requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentManagementRequiresAdmin(t *testing.T) {
	api, _, _ := newTestRouter(t)
	adminToken, _ := api.login(adminEmail, adminPassword)

	w, body := api.do(http.MethodPost, "/api/v1/students", adminToken, map[string]any{
		"username": "asha",
		"password": "Welcome123",
		"name":     "Asha Raman",
		"email":    "asha@example.com",
		"phone":    "+91 98765 43210",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body["data"].(map[string]any)
	studentID := int64(created["id"].(float64))
	assert.Regexp(t, `^STU\d{4}$`, created["studentId"])

	w, body = api.do(http.MethodPost, "/api/v1/students", adminToken, map[string]any{
		"password": "Welcome123",
		"name":     "Someone Else",
		"email":    "ASHA@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REG_002", errorCode(body))

	studentToken, _ := api.login("asha@example.com", "Welcome123")
	studentPath := "/api/v1/students/" + jsonNumber(studentID)
	denied := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/v1/students", map[string]any{"password": "Welcome123", "name": "X", "email": "x@example.com"}},
		{http.MethodGet, studentPath, nil},
		{http.MethodPatch, studentPath, map[string]any{"name": "Renamed"}},
		{http.MethodPut, studentPath + "/courses", map[string]any{"courseIds": []int64{}}},
		{http.MethodGet, "/api/v1/profiles", nil},
		{http.MethodGet, "/api/v1/faculty/1/courses", nil},
	}
	for _, tt := range denied {
		w, body := api.do(tt.method, tt.path, studentToken, tt.body)
		assert.Equal(t, http.StatusForbidden, w.Code, tt.method+" "+tt.path)
		assert.Equal(t, "AUTH_011", errorCode(body), tt.method+" "+tt.path)
	}

	w, body = api.do(http.MethodGet, "/api/v1/profiles", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]any), 2)

	w, body = api.do(http.MethodGet, "/api/v1/students?search=RAMAN&field=name", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]any), 1)

	w, body = api.do(http.MethodGet, "/api/v1/students?search=asha&field=address", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(body))

	w, body = api.do(http.MethodPatch, studentPath, adminToken, map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(body))

	w, body = api.do(http.MethodPut, studentPath+"/courses", adminToken, map[string]any{"courseIds": []int64{999}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "RES_003", errorCode(body))

	w, body = api.do(http.MethodPut, studentPath+"/courses", adminToken, map[string]any{"courseIds": []int64{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, body["data"].(map[string]any)["courses"])
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
