package config

import (
	"fmt"
	"strings"
	"time"
)

// GatewayMode selects which auth gateway implementation backs the UI.
type GatewayMode string

const (
	// GatewayModeHTTP talks to the real backend API.
	GatewayModeHTTP GatewayMode = "http"
	// GatewayModeDev uses the in-process dev gateway with seeded accounts.
	GatewayModeDev GatewayMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for GatewayMode.
func (g *GatewayMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "http", "dev":
		*g = GatewayMode(v)
		return nil
	default:
		return fmt.Errorf("invalid GatewayMode: %q (valid options: http, dev)", v)
	}
}

// GatewayConfig configures the HTTP auth gateway client.
type GatewayConfig struct {
	// BaseURL is the backend API root, e.g. "http://localhost:5000".
	BaseURL string        `env:"URL"     envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// OIDCConfig configures federated sign-in. Federated login is disabled
// when ClientID is empty.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	DiscoveryURL string `env:"DISCOVERY_URL" envDefault:"https://accounts.google.com"`
	Scope        string `env:"SCOPE"         envDefault:"openid email profile"`
	// CallbackAddr is the localhost listener for the code-flow redirect.
	CallbackAddr string `env:"CALLBACK_ADDR" envDefault:"127.0.0.1:0"`
}

// Enabled reports whether federated sign-in is configured.
func (o OIDCConfig) Enabled() bool { return o.ClientID != "" }

// DevGatewayConfig seeds the in-process dev gateway.
// Used when AUTH_GATEWAY_MODE=dev for development and testing.
type DevGatewayConfig struct {
	SigningKey         string        `env:"SIGNING_KEY"         envDefault:"dev-signing-key"`
	TokenTTL           time.Duration `env:"TOKEN_TTL"           envDefault:"8h"`
	LearnerEmail       string        `env:"LEARNER_EMAIL"       envDefault:"learner@dev.local"`
	LearnerPassword    string        `env:"LEARNER_PASSWORD"    envDefault:"learner"`
	InstructorEmail    string        `env:"INSTRUCTOR_EMAIL"    envDefault:"instructor@dev.local"`
	InstructorPassword string        `env:"INSTRUCTOR_PASSWORD" envDefault:"instructor"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which gateway the session manager talks to.
	Mode GatewayMode `env:"AUTH_GATEWAY_MODE" envDefault:"http"`

	// Gateway configuration (used when Mode=http).
	Gateway GatewayConfig `envPrefix:"AUTH_GATEWAY_"`

	// OIDC configuration for federated sign-in (optional).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Dev gateway configuration (used when Mode=dev).
	Dev DevGatewayConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Gateway.Timeout <= 0 {
		a.Gateway.Timeout = 10 * time.Second
	}
	if a.Dev.TokenTTL <= 0 {
		a.Dev.TokenTTL = 8 * time.Hour
	}
}
