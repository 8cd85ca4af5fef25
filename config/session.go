package config

import (
	"fmt"
	"strings"
)

// StoreBackend selects where the current session is persisted.
type StoreBackend string

const (
	// StoreMemory keeps the session in memory only; it does not survive
	// a restart. Intended for tests and throwaway runs.
	StoreMemory StoreBackend = "memory"
	// StoreFile persists to a JSON file under the user's home directory.
	StoreFile StoreBackend = "file"
	// StoreRedis persists to Redis.
	StoreRedis StoreBackend = "redis"
	// StorePostgres persists to Postgres.
	StorePostgres StoreBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (s *StoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "memory", "file", "redis", "postgres":
		*s = StoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: memory, file, redis, postgres)", v)
	}
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	// Backend selects the session store implementation.
	Backend StoreBackend `env:"SESSION_STORE" envDefault:"file"`

	// FileDir overrides the directory for the file backend.
	// Empty means ~/.coursehub.
	FileDir string `env:"SESSION_FILE_DIR" envDefault:""`

	// RedisKey overrides the key for the redis backend.
	RedisKey string `env:"SESSION_REDIS_KEY" envDefault:"coursehub:session"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StoreFile
	}
	if s.RedisKey == "" {
		s.RedisKey = "coursehub:session"
	}
}
