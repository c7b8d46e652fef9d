package session

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memorySession struct {
	values   map[string]string
	lastSeen time.Time
}

// MemoryStore is the default in-process store. Sessions idle past the
// expiry are dropped by the background sweep.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	expiry   time.Duration
}

// NewMemoryStore creates an in-memory store. Sessions idle longer than
// expiry are discarded; zero means never.
func NewMemoryStore(expiry time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		expiry:   expiry,
	}
}

// StartSweeper discards expired sessions every interval until ctx ends.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if m.expiry <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(time.Now())
			}
		}
	}()
}

func (m *MemoryStore) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.expiry {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStore) session(id string) *memorySession {
	s, ok := m.sessions[id]
	if !ok {
		s = &memorySession{values: make(map[string]string)}
		m.sessions[id] = s
	}
	s.lastSeen = time.Now()
	return s
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(sessionID).values[key] = value
	return nil
}

// Increment implements Store.
func (m *MemoryStore) Increment(_ context.Context, sessionID, key string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(sessionID)
	n, _ := strconv.Atoi(s.values[key])
	n += delta
	s.values[key] = strconv.Itoa(n)
	return n, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		delete(s.values, key)
	}
	return nil
}

// Snapshot implements Store.
func (m *MemoryStore) Snapshot(_ context.Context, sessionID string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	if s, ok := m.sessions[sessionID]; ok {
		for k, v := range s.values {
			out[k] = v
		}
	}
	return out, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := Stats{Sessions: len(m.sessions)}
	for _, s := range m.sessions {
		st.Keys += len(s.values)
	}
	return st, nil
}
