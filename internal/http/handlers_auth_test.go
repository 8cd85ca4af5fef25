package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	mockauth "github.com/coursehub/coursehub-ui/internal/mocks/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
	"github.com/coursehub/coursehub-ui/internal/session"
)

func newTestRouter(t *testing.T, gateway *mockauth.MockGateway) (http.Handler, *session.Manager) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	mgr, err := session.NewManager(context.Background(), session.Options{
		Gateway:  gateway,
		Provider: &mockauth.MockProvider{},
		Store:    &mockauth.MemoryStore{},
		Logger:   logger,
	})
	require.NoError(t, err)

	return NewRouter(RouterServices{Manager: mgr, Logger: logger}), mgr
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLogin_LearnerSuccess(t *testing.T) {
	router, mgr := newTestRouter(t, &mockauth.MockGateway{})

	rec := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"learner","email":"a@b.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/courses", body["redirectTo"])

	principal := body["principal"].(map[string]any)
	assert.Equal(t, "learner", principal["role"])
	profile := principal["profile"].(map[string]any)
	assert.Equal(t, "a@b.com", profile["email"])
	assert.Equal(t, "User", profile["firstName"])

	assert.True(t, mgr.IsAuthenticated())
	assert.False(t, mgr.IsAdmin())
}

func TestLogin_InstructorRedirectsToDashboard(t *testing.T) {
	router, mgr := newTestRouter(t, &mockauth.MockGateway{})

	rec := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"instructor","email":"admin@b.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/admin/dashboard", decodeBody(t, rec)["redirectTo"])
	assert.True(t, mgr.IsAdmin())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	gateway := &mockauth.MockGateway{
		LearnerFunc: func(context.Context, ports.Credentials) (domainauth.SessionToken, error) {
			return domainauth.SessionToken{}, &domainauth.LoginError{
				Kind:    domainauth.ErrInvalidCredentials,
				Message: "Incorrect email or password",
			}
		},
	}
	router, mgr := newTestRouter(t, gateway)

	rec := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"learner","email":"a@b.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid_credentials", body["error"])
	assert.Equal(t, "Incorrect email or password", body["message"])
	assert.False(t, mgr.IsAuthenticated())
}

func TestLogin_GatewayUnreachable(t *testing.T) {
	gateway := &mockauth.MockGateway{
		LearnerFunc: func(context.Context, ports.Credentials) (domainauth.SessionToken, error) {
			return domainauth.SessionToken{}, domainauth.ErrNetworkFailure
		},
	}
	router, _ := newTestRouter(t, gateway)

	rec := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"learner","email":"a@b.com","password":"pw"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "upstream_unavailable", body["error"])
	assert.Equal(t, "Unable to reach the server. Please try again.", body["message"])
}

func TestLogin_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t, &mockauth.MockGateway{})

	tests := []struct {
		name    string
		body    string
		errCode string
	}{
		{"unknown role", `{"role":"superuser","email":"a@b.com","password":"pw"}`, "invalid_role"},
		{"missing password", `{"role":"learner","email":"a@b.com","password":""}`, "missing_credentials"},
		{"unknown field", `{"role":"learner","email":"a@b.com","password":"pw","extra":1}`, "invalid_json"},
		{"malformed body", `{`, "invalid_json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/auth/login", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.errCode, decodeBody(t, rec)["error"])
		})
	}
}

func TestFederated_Success(t *testing.T) {
	router, mgr := newTestRouter(t, &mockauth.MockGateway{})

	rec := doJSON(t, router, http.MethodPost, "/auth/federated", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/courses", body["redirectTo"])

	profile := body["principal"].(map[string]any)["profile"].(map[string]any)
	assert.Equal(t, "Ada", profile["firstName"])
	assert.True(t, mgr.IsAuthenticated())
}

func TestLogout_Idempotent(t *testing.T) {
	router, mgr := newTestRouter(t, &mockauth.MockGateway{})

	doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"learner","email":"a@b.com","password":"pw"}`)
	require.True(t, mgr.IsAuthenticated())

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, mgr.IsAuthenticated())

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStatus(t *testing.T) {
	router, _ := newTestRouter(t, &mockauth.MockGateway{})

	rec := doJSON(t, router, http.MethodGet, "/auth/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["authenticated"])
	assert.Nil(t, body["principal"])

	doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"instructor","email":"admin@b.com","password":"pw"}`)

	rec = doJSON(t, router, http.MethodGet, "/auth/status", "")
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, true, body["isAdmin"])
	require.NotNil(t, body["principal"])
}

func TestNavEndpoint_FollowsSession(t *testing.T) {
	router, _ := newTestRouter(t, &mockauth.MockGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/nav", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["showLogin"])

	doJSON(t, router, http.MethodPost, "/auth/login",
		`{"role":"instructor","email":"admin@b.com","password":"pw"}`)

	rec = doJSON(t, router, http.MethodGet, "/api/nav", "")
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["showLogin"])
	assert.Equal(t, true, body["adminBadge"])
	assert.Equal(t, true, body["showLogout"])
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &mockauth.MockGateway{})

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
