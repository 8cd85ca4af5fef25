// Package ports defines interfaces (hexagonal ports) for auth-related
// behavior. Implementations live in internal/adapters; orchestration in
// internal/session.
package ports

import (
	"context"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
)

// PasswordCredentials carries an email/password pair for the password
// login path.
type PasswordCredentials struct {
	Email    string
	Password string
}

// FederatedCredentials carries the verified identity token returned by
// the external identity provider. The token is opaque to the session
// core; it is passed through to the gateway's federated-exchange path.
type FederatedCredentials struct {
	ExternalIdentityToken string
}

// Credentials is either a password pair or a federated identity token.
// Exactly one of the two must be set.
type Credentials struct {
	Password  *PasswordCredentials
	Federated *FederatedCredentials
}

// AuthGateway issues backend session tokens. The learner and instructor
// sub-paths are independent; a returned token's role tag must match the
// operation called. Failures are ErrInvalidCredentials or
// ErrNetworkFailure; timeouts are the caller's responsibility and map to
// ErrNetworkFailure.
type AuthGateway interface {
	AuthenticateLearner(ctx context.Context, creds Credentials) (domainauth.SessionToken, error)
	AuthenticateInstructor(ctx context.Context, creds Credentials) (domainauth.SessionToken, error)
}

// ProfileFetcher is an optional gateway capability: given a valid token,
// return the principal's profile. Password logins issue a placeholder
// profile; managers use this to populate it as a follow-up fetch.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token domainauth.SessionToken) (domainauth.Profile, error)
}

// ExternalIdentity is the verified identity returned by the provider:
// a stable subject id, contact attributes, and the raw identity token to
// exchange with the gateway.
type ExternalIdentity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	RawToken  string
}

// IdentityProvider wraps the external identity provider's sign-in UI.
// SignIn is single-shot and user-initiated; it may block on user
// interaction and owns its own UI lifecycle, so callers enforce no
// timeout here. Failures are ErrProviderDenied or ErrProviderUnavailable.
type IdentityProvider interface {
	SignIn(ctx context.Context) (ExternalIdentity, error)
}

// SessionStore is the durable, process-local home of the single current
// session. Load returns ErrNoSession when empty and ErrMalformedSession
// when the entry fails the persisted schema. Clear is idempotent.
type SessionStore interface {
	Load(ctx context.Context) (domainauth.StoredSession, error)
	Save(ctx context.Context, rec domainauth.StoredSession) error
	Clear(ctx context.Context) error
}
