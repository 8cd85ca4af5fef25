// Package session owns the authenticated-principal lifecycle: login,
// logout, rehydration from the durable store, and change notification
// for the views that gate content by role.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

// State identifies where the manager is in its lifecycle.
type State string

const (
	StateUnauthenticated         State = "unauthenticated"
	StateAuthenticating          State = "authenticating"
	StateAuthenticatedLearner    State = "authenticated_learner"
	StateAuthenticatedInstructor State = "authenticated_instructor"
)

// Snapshot is what subscribers receive on every session transition.
// Principal is nil when unauthenticated.
type Snapshot struct {
	State     State
	Principal domainauth.Principal
}

// Listener observes session transitions. Listeners run synchronously in
// registration order and always see the new state.
type Listener func(Snapshot)

// defaultGatewayTimeout bounds every gateway call; hitting it maps to
// ErrNetworkFailure.
const defaultGatewayTimeout = 10 * time.Second

// storeTimeout bounds session-store reads and writes.
const storeTimeout = 3 * time.Second

// Options groups dependencies for the Manager.
type Options struct {
	Gateway ports.AuthGateway
	// Provider backs federated sign-in. Optional; when nil, federated
	// login fails with ErrProviderUnavailable.
	Provider ports.IdentityProvider
	Store    ports.SessionStore
	Logger   *slog.Logger
	// GatewayTimeout overrides the bounded wait on gateway calls.
	GatewayTimeout time.Duration
}

// Manager is the single owner of the current Session. Consumers hold a
// reference or a subscription, never a second copy of the truth.
type Manager struct {
	gateway  ports.AuthGateway
	provider ports.IdentityProvider
	store    ports.SessionStore
	logger   *slog.Logger
	timeout  time.Duration

	// dispatchMu orders transitions and their notifications; mu guards
	// the fields below for cheap concurrent reads.
	dispatchMu sync.Mutex
	mu         sync.Mutex
	state      State
	prevState  State
	session    domainauth.Session
	inFlight   bool

	listeners  []subscriber
	nextListen uint64
}

type subscriber struct {
	id uint64
	fn Listener
}

// NewManager constructs a Manager and rehydrates it from the store.
// Rehydration never fails: a malformed or unreadable entry is discarded
// and the manager starts unauthenticated.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Gateway == nil {
		return nil, errors.New("session: gateway is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.GatewayTimeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	m := &Manager{
		gateway:  opts.Gateway,
		provider: opts.Provider,
		store:    opts.Store,
		logger:   logger,
		timeout:  timeout,
		state:    StateUnauthenticated,
	}
	m.rehydrate(ctx)
	return m, nil
}

// rehydrate restores the in-memory session from the store before any
// other operation is accepted.
func (m *Manager) rehydrate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rec, err := m.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domainauth.ErrNoSession):
		return
	case errors.Is(err, domainauth.ErrMalformedSession):
		m.discardStored(ctx, err)
		return
	default:
		m.logger.WarnContext(ctx, "session store unreadable, starting unauthenticated", "error", err)
		return
	}

	if err := rec.Validate(); err != nil {
		m.discardStored(ctx, err)
		return
	}

	sess := rec.Restore()
	m.session = sess
	m.state = stateFor(sess.Token.Role)
	m.logger.InfoContext(ctx, "session rehydrated",
		slog.String("role", string(sess.Token.Role)),
		slog.String("user_id", sess.Principal.Profile().ID),
	)
}

func (m *Manager) discardStored(ctx context.Context, cause error) {
	m.logger.WarnContext(ctx, "discarding malformed stored session", "error", cause)
	if err := m.store.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "clear malformed stored session failed", "error", err)
	}
}

// Login authenticates against the gateway sub-path matching role.
// Credentials carry either an email/password pair or a federated
// identity token (learner only). On success the new session is persisted
// and subscribers are notified; on failure a typed error is returned and
// any pre-existing session is left untouched.
func (m *Manager) Login(ctx context.Context, role domainauth.Role, creds ports.Credentials) (domainauth.Principal, error) {
	prof, err := placeholderProfile(role, creds)
	if err != nil {
		return nil, err
	}
	return m.login(ctx, role, creds, prof)
}

// FederatedSignIn runs the external provider's sign-in flow and
// exchanges the resulting identity token for a learner session. The
// provider owns its own UI lifecycle, so no timeout is enforced on it.
func (m *Manager) FederatedSignIn(ctx context.Context) (domainauth.Principal, error) {
	if m.provider == nil {
		return nil, domainauth.ErrProviderUnavailable
	}
	if err := m.beginAttempt(domainauth.RoleLearner); err != nil {
		return nil, err
	}

	identity, err := m.provider.SignIn(ctx)
	if err != nil {
		m.abortAttempt()
		return nil, fmt.Errorf("federated sign-in: %w", err)
	}

	creds := ports.Credentials{Federated: &ports.FederatedCredentials{ExternalIdentityToken: identity.RawToken}}
	prof := domainauth.Profile{
		ID:        identity.Subject,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
	return m.completeAttempt(ctx, domainauth.RoleLearner, creds, prof)
}

func (m *Manager) login(ctx context.Context, role domainauth.Role, creds ports.Credentials, prof domainauth.Profile) (domainauth.Principal, error) {
	if err := m.beginAttempt(role); err != nil {
		return nil, err
	}
	return m.completeAttempt(ctx, role, creds, prof)
}

// beginAttempt serializes login calls: a second attempt issued while one
// is in flight is rejected with ErrBusy rather than racing two token
// writes. Switching roles without an explicit logout is refused so a
// role-toggle alone can never elevate privileges.
func (m *Manager) beginAttempt(role domainauth.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return domainauth.ErrBusy
	}
	if m.session.IsAuthenticated() && m.session.Token.Role != role {
		return domainauth.ErrRoleMismatch
	}
	m.inFlight = true
	m.prevState = m.state
	m.state = StateAuthenticating
	return nil
}

func (m *Manager) abortAttempt() {
	m.mu.Lock()
	m.inFlight = false
	m.state = m.prevState
	m.mu.Unlock()
}

func (m *Manager) completeAttempt(ctx context.Context, role domainauth.Role, creds ports.Credentials, prof domainauth.Profile) (domainauth.Principal, error) {
	token, err := m.authenticate(ctx, role, creds)
	if err != nil {
		m.abortAttempt()
		return nil, err
	}

	sess := domainauth.Session{
		Token:     token,
		Principal: domainauth.NewPrincipal(role, prof),
	}
	m.persist(ctx, sess)

	m.dispatchMu.Lock()
	m.mu.Lock()
	m.session = sess
	m.state = stateFor(role)
	m.inFlight = false
	snap := m.snapshotLocked()
	subs := append([]subscriber(nil), m.listeners...)
	m.mu.Unlock()
	m.deliver(subs, snap)
	m.dispatchMu.Unlock()

	m.logger.InfoContext(ctx, "login succeeded",
		slog.String("role", string(role)),
		slog.String("user_id", prof.ID),
	)
	return sess.Principal, nil
}

// authenticate calls the gateway sub-path for role under the bounded
// wait, mapping timeout to ErrNetworkFailure and rejecting any token
// whose role tag mismatches the path called.
func (m *Manager) authenticate(ctx context.Context, role domainauth.Role, creds ports.Credentials) (domainauth.SessionToken, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var (
		token domainauth.SessionToken
		err   error
	)
	switch role {
	case domainauth.RoleInstructor:
		token, err = m.gateway.AuthenticateInstructor(ctx, creds)
	case domainauth.RoleLearner:
		token, err = m.gateway.AuthenticateLearner(ctx, creds)
	default:
		return domainauth.SessionToken{}, domainauth.ErrRoleMismatch
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domainauth.SessionToken{}, fmt.Errorf("%w: gateway timed out", domainauth.ErrNetworkFailure)
		}
		return domainauth.SessionToken{}, err
	}
	if token.Role != role {
		return domainauth.SessionToken{}, domainauth.ErrRoleMismatch
	}
	return token, nil
}

// persist writes the durable copy. The in-memory session stays
// authoritative while the manager is live, so a store failure degrades
// to a log line instead of failing the login.
func (m *Manager) persist(ctx context.Context, sess domainauth.Session) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := m.store.Save(ctx, domainauth.NewStoredSession(sess)); err != nil {
		m.logger.WarnContext(ctx, "persist session failed", "error", err)
	}
}

// Logout clears the in-memory session and the persisted entry. It is
// idempotent and never fails; store errors are logged only.
func (m *Manager) Logout(ctx context.Context) {
	clearCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := m.store.Clear(clearCtx); err != nil {
		m.logger.WarnContext(ctx, "clear persisted session failed", "error", err)
	}

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if !m.session.IsAuthenticated() {
		m.mu.Unlock()
		return
	}
	m.session = domainauth.Session{}
	m.state = StateUnauthenticated
	m.prevState = StateUnauthenticated
	snap := m.snapshotLocked()
	subs := append([]subscriber(nil), m.listeners...)
	m.mu.Unlock()
	m.deliver(subs, snap)

	m.logger.InfoContext(ctx, "logged out")
}

// RefreshProfile replaces the placeholder profile issued on password
// login with the backend's record, when the gateway supports it. Best
// effort: failures leave the placeholder in place.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	fetcher, ok := m.gateway.(ports.ProfileFetcher)
	if !ok {
		return nil
	}

	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()
	if !sess.IsAuthenticated() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	prof, err := fetcher.FetchProfile(ctx, sess.Token)
	if err != nil {
		m.logger.WarnContext(ctx, "profile refresh failed", "error", err)
		return err
	}

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	// The session may have changed while the fetch was in flight; a
	// completion for a superseded token is ignored, not applied.
	if m.session.Token != sess.Token {
		m.mu.Unlock()
		return nil
	}
	m.session.Principal = domainauth.NewPrincipal(sess.Token.Role, prof)
	updated := m.session
	snap := m.snapshotLocked()
	subs := append([]subscriber(nil), m.listeners...)
	m.mu.Unlock()

	m.persist(ctx, updated)
	m.deliver(subs, snap)
	return nil
}

// CurrentPrincipal returns the active principal or nil. Pure read.
func (m *Manager) CurrentPrincipal() domainauth.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Principal
}

// IsAuthenticated reports whether a principal is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.IsAuthenticated()
}

// IsAdmin reports whether the active principal is the admin variant.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.IsAdmin()
}

// User returns the learner principal, or false when the session is
// absent or held by an admin. At most one of User/Admin is present.
func (m *Manager) User() (domainauth.LearnerPrincipal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.session.Principal.(domainauth.LearnerPrincipal)
	return p, ok
}

// Admin returns the admin principal, or false when the session is absent
// or held by a learner.
func (m *Manager) Admin() (domainauth.AdminPrincipal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.session.Principal.(domainauth.AdminPrincipal)
	return p, ok
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the current session token, or false when unauthenticated.
func (m *Manager) Token() (domainauth.SessionToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token, m.session.IsAuthenticated()
}

// Subscribe registers a listener for session transitions and returns an
// unsubscribe func. Unsubscribing twice is a no-op.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextListen++
	id := m.nextListen
	m.listeners = append(m.listeners, subscriber{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.listeners {
			if sub.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, Principal: m.session.Principal}
}

func (m *Manager) deliver(subs []subscriber, snap Snapshot) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}

func stateFor(role domainauth.Role) State {
	if role == domainauth.RoleInstructor {
		return StateAuthenticatedInstructor
	}
	return StateAuthenticatedLearner
}

// placeholderProfile builds the provisional profile recorded at password
// login. The backend's sign-in response carries only a token, so the
// profile is populated by a follow-up RefreshProfile rather than decoded
// here.
func placeholderProfile(role domainauth.Role, creds ports.Credentials) (domainauth.Profile, error) {
	if !role.Valid() {
		return domainauth.Profile{}, domainauth.ErrRoleMismatch
	}
	switch {
	case creds.Password != nil && creds.Federated == nil:
		return domainauth.Profile{
			ID:        "temp-id",
			Email:     creds.Password.Email,
			FirstName: "User",
			LastName:  "Name",
		}, nil
	case creds.Federated != nil && creds.Password == nil:
		// Federated sign-in is learner-only; the instructor path never
		// uses the provider.
		if role != domainauth.RoleLearner {
			return domainauth.Profile{}, domainauth.ErrRoleMismatch
		}
		return domainauth.Profile{ID: "temp-id", FirstName: "User"}, nil
	default:
		return domainauth.Profile{}, &domainauth.LoginError{
			Kind:    domainauth.ErrInvalidCredentials,
			Message: "Login failed",
		}
	}
}
