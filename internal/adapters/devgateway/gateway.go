// Package devgateway provides an in-process AuthGateway for local
// development so the UI can run without the real backend. Accounts are
// seeded from config with bcrypt-hashed passwords and tokens are
// short-lived HS256 JWTs carrying the role they were issued for.
package devgateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

const defaultTokenTTL = 8 * time.Hour

// Account is a seeded development account.
type Account struct {
	Profile      domainauth.Profile
	PasswordHash string
	Role         domainauth.Role
}

// Config controls the dev gateway behavior.
type Config struct {
	// SigningKey signs issued tokens. Required.
	SigningKey string
	// TokenTTL defaults to 8h when zero.
	TokenTTL time.Duration
	// Accounts seeds one account per role at most; the first matching
	// account wins on sign-in.
	Accounts []Account
}

// Gateway implements ports.AuthGateway and ports.ProfileFetcher locally.
type Gateway struct {
	signingKey []byte
	ttl        time.Duration
	accounts   []Account
}

var (
	_ ports.AuthGateway    = (*Gateway)(nil)
	_ ports.ProfileFetcher = (*Gateway)(nil)
)

// New constructs a dev gateway from Config.
func New(cfg Config) (*Gateway, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("devgateway: signing key is required")
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	for _, acc := range cfg.Accounts {
		if !acc.Role.Valid() {
			return nil, fmt.Errorf("devgateway: invalid role %q for account %q", acc.Role, acc.Profile.Email)
		}
	}
	return &Gateway{
		signingKey: []byte(cfg.SigningKey),
		ttl:        ttl,
		accounts:   append([]Account(nil), cfg.Accounts...),
	}, nil
}

// HashPassword hashes a plaintext password for account seeding.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (g *Gateway) AuthenticateLearner(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error) {
	return g.authenticate(ctx, domainauth.RoleLearner, creds)
}

func (g *Gateway) AuthenticateInstructor(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error) {
	return g.authenticate(ctx, domainauth.RoleInstructor, creds)
}

func (g *Gateway) authenticate(ctx context.Context, role domainauth.Role, creds ports.Credentials) (domainauth.SessionToken, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.SessionToken{}, fmt.Errorf("%w: %v", domainauth.ErrNetworkFailure, err)
	}

	switch {
	case creds.Password != nil:
		acc, ok := g.lookup(role, creds.Password.Email)
		if !ok {
			return domainauth.SessionToken{}, rejection()
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(creds.Password.Password)) != nil {
			return domainauth.SessionToken{}, rejection()
		}
		return g.issue(acc)

	case creds.Federated != nil:
		// Federated exchange is learner-only; any non-empty identity
		// token signs in the seeded learner account.
		if role != domainauth.RoleLearner {
			return domainauth.SessionToken{}, domainauth.ErrRoleMismatch
		}
		if creds.Federated.ExternalIdentityToken == "" {
			return domainauth.SessionToken{}, rejection()
		}
		for _, acc := range g.accounts {
			if acc.Role == domainauth.RoleLearner {
				return g.issue(acc)
			}
		}
		return domainauth.SessionToken{}, rejection()

	default:
		return domainauth.SessionToken{}, rejection()
	}
}

func (g *Gateway) lookup(role domainauth.Role, email string) (Account, bool) {
	for _, acc := range g.accounts {
		if acc.Role == role && acc.Profile.Email == email {
			return acc, true
		}
	}
	return Account{}, false
}

func rejection() error {
	return &domainauth.LoginError{Kind: domainauth.ErrInvalidCredentials, Message: "Incorrect email or password"}
}

// claims is the dev token payload. The role claim always agrees with the
// token's role tag.
type claims struct {
	Role  domainauth.Role `json:"role"`
	Email string          `json:"email"`
	jwt.RegisteredClaims
}

func (g *Gateway) issue(acc Account) (domainauth.SessionToken, error) {
	now := time.Now()
	c := claims{
		Role:  acc.Role,
		Email: acc.Profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.Profile.ID,
			Issuer:    "coursehub-devgateway",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(g.signingKey)
	if err != nil {
		return domainauth.SessionToken{}, fmt.Errorf("devgateway: sign token: %w", err)
	}
	return domainauth.SessionToken{Value: signed, Role: acc.Role}, nil
}

// FetchProfile resolves the account behind a dev token, verifying the
// signature and the role claim against the token's role tag.
func (g *Gateway) FetchProfile(_ context.Context, token domainauth.SessionToken) (domainauth.Profile, error) {
	parsed, err := jwt.ParseWithClaims(token.Value, &claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return g.signingKey, nil
	})
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("devgateway: parse token: %w", err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return domainauth.Profile{}, errors.New("devgateway: invalid token claims")
	}
	if c.Role != token.Role {
		return domainauth.Profile{}, domainauth.ErrRoleMismatch
	}

	for _, acc := range g.accounts {
		if acc.Role == c.Role && acc.Profile.Email == c.Email {
			return acc.Profile, nil
		}
	}
	return domainauth.Profile{}, errors.New("devgateway: unknown account")
}
