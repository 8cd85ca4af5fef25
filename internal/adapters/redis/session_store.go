// Package redis provides Redis-based adapters for the coursehub UI.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

const defaultKey = "coursehub:session"

// SessionStore keeps the single current session under one fixed key.
// Useful when several UI instances on one host should share the
// signed-in principal.
type SessionStore struct {
	client redis.UniversalClient
	key    string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, key: defaultKey}
}

// NewSessionStoreWithKey creates a Redis session store under a custom key.
func NewSessionStoreWithKey(client redis.UniversalClient, key string) *SessionStore {
	return &SessionStore{client: client, key: key}
}

func (s *SessionStore) Load(ctx context.Context) (domainauth.StoredSession, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.StoredSession{}, domainauth.ErrNoSession
		}
		return domainauth.StoredSession{}, fmt.Errorf("redis get: %w", err)
	}

	var rec domainauth.StoredSession
	if unmarshalErr := json.Unmarshal([]byte(data), &rec); unmarshalErr != nil {
		return domainauth.StoredSession{}, fmt.Errorf("%w: %v", domainauth.ErrMalformedSession, unmarshalErr)
	}
	if err := rec.Validate(); err != nil {
		return domainauth.StoredSession{}, err
	}
	return rec, nil
}

func (s *SessionStore) Save(ctx context.Context, rec domainauth.StoredSession) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// No TTL: backend tokens carry their own expiry and the manager
	// discards entries it cannot use.
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
