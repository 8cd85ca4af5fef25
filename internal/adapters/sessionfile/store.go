// Package sessionfile persists the current session as a JSON document on
// the local filesystem so it survives process restarts. Writes go
// through a temp file and an atomic rename; the file is created 0600
// since it holds a bearer token.
package sessionfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

const fileName = "session.json"

// Store is a file-backed single-entry session store.
type Store struct {
	path string
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates a session store rooted at baseDir. If baseDir is
// empty, ~/.coursehub/ is used. The directory is created 0700.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("sessionfile: resolve home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".coursehub")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("sessionfile: create directory: %w", err)
	}
	return &Store{path: filepath.Join(baseDir, fileName)}, nil
}

func (s *Store) Load(_ context.Context) (domainauth.StoredSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domainauth.StoredSession{}, domainauth.ErrNoSession
		}
		return domainauth.StoredSession{}, fmt.Errorf("sessionfile: read: %w", err)
	}

	var rec domainauth.StoredSession
	if err := json.Unmarshal(data, &rec); err != nil {
		return domainauth.StoredSession{}, fmt.Errorf("%w: %v", domainauth.ErrMalformedSession, err)
	}
	if err := rec.Validate(); err != nil {
		return domainauth.StoredSession{}, err
	}
	return rec, nil
}

func (s *Store) Save(_ context.Context, rec domainauth.StoredSession) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("sessionfile: marshal: %w", err)
	}

	// Write to a temp file first, then rename into place.
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("sessionfile: write: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("sessionfile: save: %w", err)
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sessionfile: clear: %w", err)
	}
	return nil
}

// Path returns the backing file path, for logging.
func (s *Store) Path() string { return s.path }
