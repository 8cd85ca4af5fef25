// Package gateway provides the HTTP client for the backend auth gateway.
// The backend owns accounts and token issuance; this client only shapes
// requests, tags returned tokens with the role of the sub-path called,
// and maps failures onto the session error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

// Default endpoint paths, matching the backend's v1 API.
const (
	defaultLearnerSignInPath    = "/api/v1/user/signin"
	defaultInstructorSignInPath = "/api/v1/admin/signin"
	defaultFederatedPath        = "/api/v1/user/google-signin"
	defaultProfilePath          = "/api/v1/user/me"
)

// Config holds configuration for the gateway client.
type Config struct {
	BaseURL string
	// HTTPClient is optional; defaults to a client without its own
	// timeout since callers bound every request via context.
	HTTPClient *http.Client

	LearnerSignInPath    string
	InstructorSignInPath string
	FederatedPath        string
	ProfilePath          string
}

// Client implements ports.AuthGateway and ports.ProfileFetcher over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client

	learnerPath    string
	instructorPath string
	federatedPath  string
	profilePath    string
}

var (
	_ ports.AuthGateway    = (*Client)(nil)
	_ ports.ProfileFetcher = (*Client)(nil)
)

// NewClient creates a gateway client for the configured backend.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:     httpClient,
		learnerPath:    defaultPath(cfg.LearnerSignInPath, defaultLearnerSignInPath),
		instructorPath: defaultPath(cfg.InstructorSignInPath, defaultInstructorSignInPath),
		federatedPath:  defaultPath(cfg.FederatedPath, defaultFederatedPath),
		profilePath:    defaultPath(cfg.ProfilePath, defaultProfilePath),
	}, nil
}

func defaultPath(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (c *Client) AuthenticateLearner(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error) {
	switch {
	case creds.Password != nil:
		return c.signIn(ctx, c.learnerPath, domainauth.RoleLearner, passwordBody{
			Email:    creds.Password.Email,
			Password: creds.Password.Password,
		})
	case creds.Federated != nil:
		return c.signIn(ctx, c.federatedPath, domainauth.RoleLearner, federatedBody{
			IDToken: creds.Federated.ExternalIdentityToken,
		})
	default:
		return domainauth.SessionToken{}, &domainauth.LoginError{Kind: domainauth.ErrInvalidCredentials, Message: "Login failed"}
	}
}

func (c *Client) AuthenticateInstructor(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error) {
	// The instructor sub-path has no federated exchange.
	if creds.Password == nil {
		return domainauth.SessionToken{}, domainauth.ErrRoleMismatch
	}
	return c.signIn(ctx, c.instructorPath, domainauth.RoleInstructor, passwordBody{
		Email:    creds.Password.Email,
		Password: creds.Password.Password,
	})
}

// FetchProfile resolves the principal's profile for a valid token.
func (c *Client) FetchProfile(ctx context.Context, token domainauth.SessionToken) (domainauth.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.profilePath, nil)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainauth.Profile{}, networkErr(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainauth.Profile{}, fmt.Errorf("%w: profile fetch returned %d", domainauth.ErrNetworkFailure, resp.StatusCode)
	}

	var prof domainauth.Profile
	if err := json.NewDecoder(resp.Body).Decode(&prof); err != nil {
		return domainauth.Profile{}, fmt.Errorf("gateway: decode profile: %w", err)
	}
	return prof, nil
}

type passwordBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedBody struct {
	IDToken string `json:"idToken"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) signIn(ctx context.Context, path string, role domainauth.Role, body any) (domainauth.SessionToken, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domainauth.SessionToken{}, fmt.Errorf("gateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domainauth.SessionToken{}, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainauth.SessionToken{}, networkErr(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= 500 {
		return domainauth.SessionToken{}, fmt.Errorf("%w: gateway returned %d", domainauth.ErrNetworkFailure, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainauth.SessionToken{}, rejectionErr(resp.Body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return domainauth.SessionToken{}, fmt.Errorf("gateway: decode response: %w", err)
	}
	if tr.Token == "" {
		return domainauth.SessionToken{}, &domainauth.LoginError{Kind: domainauth.ErrInvalidCredentials, Message: "Login failed"}
	}

	return domainauth.SessionToken{Value: tr.Token, Role: role}, nil
}

// rejectionErr surfaces the backend's error body verbatim when present,
// and the generic "Login failed" otherwise.
func rejectionErr(body io.Reader) error {
	var er errorResponse
	// A malformed error body still means rejected credentials.
	_ = json.NewDecoder(body).Decode(&er)
	if er.Message == "" {
		er.Message = "Login failed"
	}
	return &domainauth.LoginError{Kind: domainauth.ErrInvalidCredentials, Message: er.Message}
}

func networkErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", domainauth.ErrNetworkFailure)
	}
	return fmt.Errorf("%w: %v", domainauth.ErrNetworkFailure, err)
}

// drainAndClose consumes the remainder of a response body so the
// connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// Ping verifies the backend is reachable. Used at startup for an early
// warning log, never to gate boot.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkErr(err)
	}
	drainAndClose(resp.Body)
	return nil
}
