// Package pgstore persists the current session in Postgres. It is the
// store of choice when the UI runs behind a supervisor that may restart
// it on another host, where neither a local file nor host-local Redis
// survives.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

// ErrSchemaMissing reports that the session table has not been created.
var ErrSchemaMissing = errors.New("pgstore: ui_session table missing, run EnsureSchema")

// The table holds at most one row; slot is fixed so upserts converge.
const slot = "current"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS ui_session (
	slot       TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is a Postgres-backed single-entry session store.
type Store struct {
	DB *sql.DB
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates a Postgres session store on an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// EnsureSchema creates the session table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (domainauth.StoredSession, error) {
	var payload []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT payload FROM ui_session WHERE slot = $1`, slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domainauth.StoredSession{}, domainauth.ErrNoSession
		}
		return domainauth.StoredSession{}, mapDBError("load", err)
	}

	var rec domainauth.StoredSession
	if unmarshalErr := json.Unmarshal(payload, &rec); unmarshalErr != nil {
		return domainauth.StoredSession{}, fmt.Errorf("%w: %v", domainauth.ErrMalformedSession, unmarshalErr)
	}
	if err := rec.Validate(); err != nil {
		return domainauth.StoredSession{}, err
	}
	return rec, nil
}

func (s *Store) Save(ctx context.Context, rec domainauth.StoredSession) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("pgstore: marshal session: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO ui_session (slot, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		slot, payload)
	if err != nil {
		return mapDBError("save", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM ui_session WHERE slot = $1`, slot); err != nil {
		return mapDBError("clear", err)
	}
	return nil
}

// mapDBError surfaces a missing table as ErrSchemaMissing so callers get
// an actionable message instead of a raw SQLSTATE.
func mapDBError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("pgstore: %s: %w", op, ErrSchemaMissing)
	}
	return fmt.Errorf("pgstore: %s: %w", op, err)
}
