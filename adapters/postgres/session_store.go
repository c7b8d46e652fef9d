// Package postgres provides the durable session store used when
// DATABASE_URL is configured. State written here survives server restarts,
// unlike the in-memory default.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"dashlab/internal/session"
)

// SessionStore persists session key-value state in a single table.
type SessionStore struct {
	db *sqlx.DB
}

// Connect opens the database, verifies it, and ensures the schema.
func Connect(ctx context.Context, url string) (*SessionStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := &SessionStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSessionStore wraps an existing connection (used by tests).
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Close releases the underlying connection pool.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS session_state (
			session_id TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (session_id, key)
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure session_state table: %w", err)
	}
	return nil
}

// Get implements session.Store.
func (s *SessionStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_state WHERE session_id = $1 AND key = $2`,
		sessionID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key: %w", err)
	}
	return value, true, nil
}

// Set implements session.Store.
func (s *SessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	query := `
		INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, sessionID, key, value); err != nil {
		return fmt.Errorf("failed to save session key: %w", err)
	}
	return nil
}

// Increment implements session.Store. The upsert keeps concurrent
// increments from different requests consistent.
func (s *SessionStore) Increment(ctx context.Context, sessionID, key string, delta int) (int, error) {
	query := `
		INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES ($1, $2, $3::text, now())
		ON CONFLICT (session_id, key) DO UPDATE SET
			value = (COALESCE(NULLIF(session_state.value, ''), '0')::int + $3)::text,
			updated_at = now()
		RETURNING value::int`
	var n int
	if err := s.db.QueryRowContext(ctx, query, sessionID, key, delta).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to increment session key: %w", err)
	}
	return n, nil
}

// Delete implements session.Store.
func (s *SessionStore) Delete(ctx context.Context, sessionID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE session_id = $1 AND key = $2`, sessionID, key)
	if err != nil {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	return nil
}

// Snapshot implements session.Store.
func (s *SessionStore) Snapshot(ctx context.Context, sessionID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM session_state WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Clear implements session.Store.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Stats implements session.Store.
func (s *SessionStore) Stats(ctx context.Context) (session.Stats, error) {
	var st session.Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT session_id), COUNT(*) FROM session_state`).
		Scan(&st.Sessions, &st.Keys)
	if err != nil {
		return session.Stats{}, fmt.Errorf("failed to read session stats: %w", err)
	}
	return st, nil
}

var _ session.Store = (*SessionStore)(nil)
