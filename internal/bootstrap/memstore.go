package bootstrap

import (
	"context"
	"sync"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
)

// memStore is the memory session store backend. Sessions do not survive
// a restart; it exists for tests and throwaway runs.
type memStore struct {
	mu  sync.Mutex
	rec *domainauth.StoredSession
}

func (s *memStore) Load(context.Context) (domainauth.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return domainauth.StoredSession{}, domainauth.ErrNoSession
	}
	return *s.rec, nil
}

func (s *memStore) Save(_ context.Context, rec domainauth.StoredSession) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := rec
	s.rec = &cp
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
