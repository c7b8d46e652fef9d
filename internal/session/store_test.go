package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	s := For(store, "sess-1")

	if got := s.Get(ctx, "missing"); got != "" {
		t.Errorf("unset key should be empty, got %q", got)
	}
	if err := s.Set(ctx, "last_filter", "Alpha,Beta"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(ctx, "last_filter"); got != "Alpha,Beta" {
		t.Errorf("got %q", got)
	}

	if n := s.Increment(ctx, "runs", 1); n != 1 {
		t.Errorf("first increment = %d, want 1", n)
	}
	if n := s.Increment(ctx, "runs", 1); n != 2 {
		t.Errorf("second increment = %d, want 2", n)
	}
	if got := s.GetInt(ctx, "runs"); got != 2 {
		t.Errorf("GetInt = %d, want 2", got)
	}
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	a := For(store, "sess-a")
	b := For(store, "sess-b")

	a.Increment(ctx, "runs", 5)
	if got := b.GetInt(ctx, "runs"); got != 0 {
		t.Errorf("session b sees session a's counter: %d", got)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	s := For(store, "sess-1")
	s.Increment(ctx, "counter", 3)
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if got := s.GetInt(ctx, "counter"); got != 0 {
		t.Errorf("cleared session still has counter %d", got)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Millisecond)
	s := For(store, "sess-1")
	s.Set(ctx, "k", "v")

	store.sweep(time.Now().Add(time.Minute))

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Sessions != 0 {
		t.Errorf("expired session survived the sweep: %+v", stats)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	For(store, "a").Set(ctx, "x", "1")
	For(store, "a").Set(ctx, "y", "2")
	For(store, "b").Set(ctx, "x", "1")

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Sessions != 2 || stats.Keys != 3 {
		t.Errorf("stats = %+v, want 2 sessions / 3 keys", stats)
	}
}
