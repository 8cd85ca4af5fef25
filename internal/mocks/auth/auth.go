// Package auth contains simple hand-written test doubles for the auth
// ports. These are lightweight and suitable for unit tests without
// codegen; see internal/mocks for the gomock variants.
package auth

import (
	"context"
	"sync"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthGateway      = (*MockGateway)(nil)
	_ ports.ProfileFetcher   = (*MockGateway)(nil)
	_ ports.IdentityProvider = (*MockProvider)(nil)
	_ ports.SessionStore     = (*MemoryStore)(nil)
)

// MockGateway simulates the backend auth gateway. Each sub-path can be
// overridden; defaults issue a correctly role-tagged token.
type MockGateway struct {
	LearnerFunc    func(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error)
	InstructorFunc func(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error)
	ProfileFunc    func(ctx context.Context, token domainauth.SessionToken) (domainauth.Profile, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockGateway) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

// Calls returns the gateway operations invoked so far, in order.
func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockGateway) AuthenticateLearner(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error) {
	m.record("learner")
	if m.LearnerFunc != nil {
		return m.LearnerFunc(ctx, creds)
	}
	return domainauth.SessionToken{Value: "learner-token", Role: domainauth.RoleLearner}, nil
}

func (m *MockGateway) AuthenticateInstructor(ctx context.Context, creds ports.Credentials) (domainauth.SessionToken, error) {
	m.record("instructor")
	if m.InstructorFunc != nil {
		return m.InstructorFunc(ctx, creds)
	}
	return domainauth.SessionToken{Value: "instructor-token", Role: domainauth.RoleInstructor}, nil
}

func (m *MockGateway) FetchProfile(ctx context.Context, token domainauth.SessionToken) (domainauth.Profile, error) {
	m.record("profile")
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, token)
	}
	return domainauth.Profile{ID: "user-1", Email: "user@example.com", FirstName: "Course", LastName: "Hubber"}, nil
}

// MockProvider simulates the external identity provider.
type MockProvider struct {
	SignInFunc func(ctx context.Context) (ports.ExternalIdentity, error)
}

func (m *MockProvider) SignIn(ctx context.Context) (ports.ExternalIdentity, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx)
	}
	return ports.ExternalIdentity{
		Subject:   "google-uid-1",
		Email:     "learner@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		RawToken:  "id-token-1",
	}, nil
}

// MemoryStore is an in-memory single-entry session store for unit tests.
type MemoryStore struct {
	mu  sync.Mutex
	rec *domainauth.StoredSession

	// Corrupt makes Load report a malformed entry until the next Save.
	Corrupt bool
	// SaveErr and ClearErr force failures when set.
	SaveErr  error
	ClearErr error
}

func (s *MemoryStore) Load(_ context.Context) (domainauth.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Corrupt {
		return domainauth.StoredSession{}, domainauth.ErrMalformedSession
	}
	if s.rec == nil {
		return domainauth.StoredSession{}, domainauth.ErrNoSession
	}
	return *s.rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec domainauth.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Corrupt = false
	cp := rec
	s.rec = &cp
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.rec = nil
	s.Corrupt = false
	return nil
}

// Stored returns the persisted record, or false when empty.
func (s *MemoryStore) Stored() (domainauth.StoredSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return domainauth.StoredSession{}, false
	}
	return *s.rec, true
}
