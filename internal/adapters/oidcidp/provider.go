// Package oidcidp implements the federated sign-in provider with an
// OIDC authorization-code flow. SignIn opens the system browser against
// the discovered issuer, catches the redirect on a short-lived localhost
// listener, verifies the ID token, and hands back the verified identity
// together with the raw token for the gateway exchange.
package oidcidp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	DiscoveryURL string
	Scope        string
	// CallbackAddr is the localhost address the redirect listener binds
	// to. Defaults to 127.0.0.1:0 (ephemeral port); fixed-port client
	// registrations should set it explicitly.
	CallbackAddr string
	// OpenBrowser launches the user's browser at the auth URL. Required;
	// injected so tests can drive the flow without a real browser.
	OpenBrowser func(url string) error
	HTTPClient  *http.Client // Optional, defaults to a 30s-timeout client
}

// Provider implements ports.IdentityProvider using OIDC/OAuth2.
type Provider struct {
	clientID     string
	clientSecret string
	scopes       []string
	callbackAddr string
	openBrowser  func(url string) error
	httpClient   *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider creates a new OIDC provider. Discovery runs once here;
// an unreachable issuer surfaces as ErrProviderUnavailable.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if config.OpenBrowser == nil {
		return nil, errors.New("browser launcher is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	scope := config.Scope
	if scope == "" {
		scope = "openid email profile"
	}

	callbackAddr := config.CallbackAddr
	if callbackAddr == "" {
		callbackAddr = "127.0.0.1:0"
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: discovery: %v", domainauth.ErrProviderUnavailable, err)
	}

	return &Provider{
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		scopes:       strings.Fields(scope),
		callbackAddr: callbackAddr,
		openBrowser:  config.OpenBrowser,
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// SignIn runs one interactive sign-in. It blocks until the browser
// redirect lands on the callback listener or ctx is done; a ctx cancel
// counts as the user abandoning the flow.
func (p *Provider) SignIn(ctx context.Context) (ports.ExternalIdentity, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("generate nonce: %w", err)
	}

	listener, err := net.Listen("tcp", p.callbackAddr)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: callback listener: %v", domainauth.ErrProviderUnavailable, err)
	}
	defer listener.Close()

	cfg := &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		RedirectURL:  fmt.Sprintf("http://%s/callback", listener.Addr().String()),
		Scopes:       p.scopes,
		Endpoint:     p.oidcProvider.Endpoint(),
	}

	results := make(chan callbackResult, 1)
	server := &http.Server{Handler: callbackHandler(state, results)}
	go func() {
		// ErrServerClosed is the normal shutdown path.
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("%w: callback server: %v", domainauth.ErrProviderUnavailable, serveErr)}:
			default:
			}
		}
	}()
	defer server.Close()

	authURL := cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	if err := p.openBrowser(authURL); err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: open browser: %v", domainauth.ErrProviderUnavailable, err)
	}

	select {
	case <-ctx.Done():
		return ports.ExternalIdentity{}, fmt.Errorf("%w: %v", domainauth.ErrProviderDenied, ctx.Err())
	case res := <-results:
		if res.err != nil {
			return ports.ExternalIdentity{}, res.err
		}
		return p.exchange(ctx, cfg, res.code, nonce)
	}
}

func (p *Provider) exchange(ctx context.Context, cfg *oauth2.Config, code, expectedNonce string) (ports.ExternalIdentity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: code exchange: %v", domainauth.ErrProviderUnavailable, err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: missing id_token in token response", domainauth.ErrProviderUnavailable)
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: verify id_token: %v", domainauth.ErrProviderUnavailable, err)
	}

	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: parse id_token claims: %v", domainauth.ErrProviderUnavailable, claimsErr)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return ports.ExternalIdentity{}, fmt.Errorf("%w: nonce mismatch", domainauth.ErrProviderDenied)
	}

	first, last := resolveName(claims)
	return ports.ExternalIdentity{
		Subject:   claims.Sub,
		Email:     claims.Email,
		FirstName: first,
		LastName:  last,
		RawToken:  rawID,
	}, nil
}

// idTokenClaims is the subset of standard OIDC claims the UI consumes.
type idTokenClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nonce      string `json:"nonce"`
}

// resolveName prefers the structured given/family claims and falls back
// to splitting the display name: first word becomes the first name, the
// remainder the last name, with "User"/"Name" placeholders when empty.
func resolveName(c idTokenClaims) (string, string) {
	first, last := c.GivenName, c.FamilyName
	if first == "" || last == "" {
		splitFirst, splitLast := splitDisplayName(c.Name)
		if first == "" {
			first = splitFirst
		}
		if last == "" {
			last = splitLast
		}
	}
	return first, last
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	first, last := "User", "Name"
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler terminates the redirect leg of the code flow. The
// first matching request wins; anything after that gets a plain 404.
func callbackHandler(expectedState string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r, expectedState)
		select {
		case results <- res:
		default:
		}
		if res.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "Sign-in failed. You can close this window.")
			return
		}
		fmt.Fprint(w, "Signed in. You can close this window.")
	})
	return mux
}

func parseCallback(r *http.Request, expectedState string) callbackResult {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		// access_denied is the provider's cancel button.
		return callbackResult{err: fmt.Errorf("%w: %s", domainauth.ErrProviderDenied, errCode)}
	}
	if q.Get("state") != expectedState {
		return callbackResult{err: fmt.Errorf("%w: state mismatch", domainauth.ErrProviderDenied)}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: fmt.Errorf("%w: missing authorization code", domainauth.ErrProviderUnavailable)}
	}
	return callbackResult{code: code}
}

// generateRandomString generates a cryptographically secure URL-safe
// random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
