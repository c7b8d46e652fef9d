// Package session provides the per-browser key-value memory that survives
// across requests within one browser session: run counters, last-applied
// filter values, and other small UI state.
package session

import (
	"context"
	"strconv"
)

// Store persists session key-value state. The in-memory implementation is
// the default; a postgres-backed one is used when DATABASE_URL is set.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Increment(ctx context.Context, sessionID, key string, delta int) (int, error)
	Delete(ctx context.Context, sessionID, key string) error
	Snapshot(ctx context.Context, sessionID string) (map[string]string, error)
	Clear(ctx context.Context, sessionID string) error
	Stats(ctx context.Context) (Stats, error)
}

// Stats summarizes a store for the ops endpoint.
type Stats struct {
	Sessions int `json:"sessions"`
	Keys     int `json:"keys"`
}

// Session binds a Store to one session ID for handler convenience.
type Session struct {
	ID    string
	store Store
}

// For returns a Session handle over the store.
func For(store Store, id string) *Session {
	return &Session{ID: id, store: store}
}

// Get returns the raw value for key, or "" when unset.
func (s *Session) Get(ctx context.Context, key string) string {
	v, _, err := s.store.Get(ctx, s.ID, key)
	if err != nil {
		return ""
	}
	return v
}

// GetInt returns the integer value for key, or 0 when unset or invalid.
func (s *Session) GetInt(ctx context.Context, key string) int {
	v, ok, err := s.store.Get(ctx, s.ID, key)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Set stores a raw value.
func (s *Session) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.ID, key, value)
}

// SetInt stores an integer value.
func (s *Session) SetInt(ctx context.Context, key string, value int) error {
	return s.store.Set(ctx, s.ID, key, strconv.Itoa(value))
}

// Increment adds delta to the integer value for key and returns the result.
func (s *Session) Increment(ctx context.Context, key string, delta int) int {
	n, err := s.store.Increment(ctx, s.ID, key, delta)
	if err != nil {
		return 0
	}
	return n
}

// Delete removes one key.
func (s *Session) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.ID, key)
}

// Clear removes all keys for this session.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.ID)
}
