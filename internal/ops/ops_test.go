package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashlab/internal/cache"
	"dashlab/internal/logging"
	"dashlab/internal/session"
)

func newTestApp(t *testing.T) (*App, session.Store, *cache.Cache) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	c := cache.New(time.Minute)
	app := New(store, map[string]*cache.Cache{"data": c}, logging.New(logging.LevelError))
	return app, store, c
}

func get(app *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	app, _, _ := newTestApp(t)
	w := get(app, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCacheStats(t *testing.T) {
	app, _, c := newTestApp(t)
	_, _, err := c.GetOrCompute("k", func() (interface{}, error) { return 1, nil })
	require.NoError(t, err)
	_, _, err = c.GetOrCompute("k", func() (interface{}, error) { return 1, nil })
	require.NoError(t, err)

	w := get(app, "/stats/cache")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]cache.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body, "data")
	assert.Equal(t, int64(1), body["data"].Hits)
	assert.Equal(t, int64(1), body["data"].Misses)
	assert.Equal(t, 1, body["data"].Entries)
}

func TestSessionStats(t *testing.T) {
	app, store, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "s1", "a", "1"))
	require.NoError(t, store.Set(ctx, "s1", "b", "2"))
	require.NoError(t, store.Set(ctx, "s2", "a", "3"))

	w := get(app, "/stats/sessions")
	require.Equal(t, http.StatusOK, w.Code)

	var body session.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Sessions)
	assert.Equal(t, 3, body.Keys)
}

func TestProfilerMounted(t *testing.T) {
	app, _, _ := newTestApp(t)
	w := get(app, "/debug/pprof/")
	assert.Equal(t, http.StatusOK, w.Code)
}
