package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

func passwordCreds(email, password string) ports.Credentials {
	return ports.Credentials{Password: &ports.PasswordCredentials{Email: email, Password: password}}
}

func TestClient_AuthenticateLearner_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/user/signin", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"backend-token"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	token, err := client.AuthenticateLearner(context.Background(), passwordCreds("a@b.com", "secret"))
	require.NoError(t, err)
	assert.Equal(t, "backend-token", token.Value)
	assert.Equal(t, domainauth.RoleLearner, token.Role)
}

func TestClient_AuthenticateInstructor_UsesAdminPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/admin/signin", r.URL.Path)
		_, _ = w.Write([]byte(`{"token":"admin-token"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	token, err := client.AuthenticateInstructor(context.Background(), passwordCreds("teach@b.com", "secret"))
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleInstructor, token.Role)
}

func TestClient_FederatedExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/user/google-signin", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "raw-id-token", body["idToken"])

		_, _ = w.Write([]byte(`{"token":"exchanged"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	creds := ports.Credentials{Federated: &ports.FederatedCredentials{ExternalIdentityToken: "raw-id-token"}}
	token, err := client.AuthenticateLearner(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "exchanged", token.Value)
	assert.Equal(t, domainauth.RoleLearner, token.Role)
}

func TestClient_Rejection_SurfacesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Incorrect email or password"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.AuthenticateLearner(context.Background(), passwordCreds("a@b.com", "wrong"))
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect email or password", domainauth.UserMessage(err))
}

func TestClient_Rejection_EmptyBodyFallsBackToGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.AuthenticateLearner(context.Background(), passwordCreds("a@b.com", "wrong"))
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Equal(t, "Login failed", domainauth.UserMessage(err))
}

func TestClient_ServerErrorIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.AuthenticateLearner(context.Background(), passwordCreds("a@b.com", "pw"))
	require.ErrorIs(t, err, domainauth.ErrNetworkFailure)
}

func TestClient_TimeoutIsNetworkFailure(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.AuthenticateLearner(ctx, passwordCreds("a@b.com", "pw"))
	require.ErrorIs(t, err, domainauth.ErrNetworkFailure)
}

func TestClient_UnreachableIsNetworkFailure(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.AuthenticateLearner(context.Background(), passwordCreds("a@b.com", "pw"))
	require.ErrorIs(t, err, domainauth.ErrNetworkFailure)
}

func TestClient_InstructorFederatedRejected(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:9"})
	require.NoError(t, err)

	creds := ports.Credentials{Federated: &ports.FederatedCredentials{ExternalIdentityToken: "tok"}}
	_, err = client.AuthenticateInstructor(context.Background(), creds)
	require.ErrorIs(t, err, domainauth.ErrRoleMismatch)
}

func TestClient_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u-1","email":"a@b.com","firstName":"Ada","lastName":"Lovelace"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	prof, err := client.FetchProfile(context.Background(), domainauth.SessionToken{Value: "tok-1", Role: domainauth.RoleLearner})
	require.NoError(t, err)
	assert.Equal(t, "Ada", prof.FirstName)
	assert.Equal(t, "u-1", prof.ID)
}
