package oidcidp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

type discoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// newDiscoveryServer serves a minimal OIDC discovery document whose
// issuer matches the server's own URL.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := discoveryDocument{
			Issuer:                server.URL,
			AuthorizationEndpoint: server.URL + "/auth",
			TokenEndpoint:         server.URL + "/token",
			JwksURI:               server.URL + "/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	server = httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func noBrowser(string) error { return nil }

func TestNewProvider_Success(t *testing.T) {
	discovery := newDiscoveryServer(t)

	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		DiscoveryURL: discovery.URL,
		OpenBrowser:  noBrowser,
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)

	var _ ports.IdentityProvider = provider
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{DiscoveryURL: "http://example.com", OpenBrowser: noBrowser},
			errMsg: "client ID is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "c", OpenBrowser: noBrowser},
			errMsg: "discovery URL is required",
		},
		{
			name:   "missing browser launcher",
			config: ProviderConfig{ClientID: "c", DiscoveryURL: "http://example.com"},
			errMsg: "browser launcher is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewProvider_DiscoveryUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		DiscoveryURL: server.URL,
		OpenBrowser:  noBrowser,
	})
	require.ErrorIs(t, err, domainauth.ErrProviderUnavailable)
}

func TestSignIn_UserDenies(t *testing.T) {
	discovery := newDiscoveryServer(t)

	// The "browser" immediately follows the redirect back with the
	// provider's cancel response.
	browser := func(authURL string) error {
		parsed, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		redirect := parsed.Query().Get("redirect_uri")
		go func() {
			resp, getErr := http.Get(redirect + "?error=access_denied")
			if getErr == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		DiscoveryURL: discovery.URL,
		OpenBrowser:  browser,
	})
	require.NoError(t, err)

	_, err = provider.SignIn(context.Background())
	require.ErrorIs(t, err, domainauth.ErrProviderDenied)
}

func TestSignIn_ContextCanceledIsDenied(t *testing.T) {
	discovery := newDiscoveryServer(t)

	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		DiscoveryURL: discovery.URL,
		OpenBrowser:  noBrowser,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = provider.SignIn(ctx)
	require.ErrorIs(t, err, domainauth.ErrProviderDenied)
}

func TestParseCallback(t *testing.T) {
	req := func(rawQuery string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/callback?"+rawQuery, nil)
		return r
	}

	t.Run("success", func(t *testing.T) {
		res := parseCallback(req("state=s1&code=abc"), "s1")
		require.NoError(t, res.err)
		assert.Equal(t, "abc", res.code)
	})

	t.Run("provider error is denied", func(t *testing.T) {
		res := parseCallback(req("error=access_denied"), "s1")
		require.ErrorIs(t, res.err, domainauth.ErrProviderDenied)
	})

	t.Run("state mismatch is denied", func(t *testing.T) {
		res := parseCallback(req("state=other&code=abc"), "s1")
		require.ErrorIs(t, res.err, domainauth.ErrProviderDenied)
	})

	t.Run("missing code is unavailable", func(t *testing.T) {
		res := parseCallback(req("state=s1"), "s1")
		require.ErrorIs(t, res.err, domainauth.ErrProviderUnavailable)
	})
}

func TestResolveName(t *testing.T) {
	tests := []struct {
		name      string
		claims    idTokenClaims
		wantFirst string
		wantLast  string
	}{
		{"structured claims win", idTokenClaims{GivenName: "Ada", FamilyName: "Lovelace", Name: "Someone Else"}, "Ada", "Lovelace"},
		{"display name split", idTokenClaims{Name: "Ada Lovelace"}, "Ada", "Lovelace"},
		{"multi-word last name", idTokenClaims{Name: "Ada King Lovelace"}, "Ada", "King Lovelace"},
		{"single word", idTokenClaims{Name: "Ada"}, "Ada", "Name"},
		{"empty", idTokenClaims{}, "User", "Name"},
		{"partial structured", idTokenClaims{GivenName: "Ada", Name: "Ada Lovelace"}, "Ada", "Lovelace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := resolveName(tt.claims)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	for _, length := range []int{0, 1, 16, 32, 43} {
		s, err := generateRandomString(length)
		require.NoError(t, err)
		assert.Len(t, s, length)
	}

	a, err := generateRandomString(32)
	require.NoError(t, err)
	b, err := generateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
