// Package ops is the side-port diagnostics server: health, profiling and
// runtime stats, kept off the public dashboard port.
package ops

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dashlab/internal/cache"
	"dashlab/internal/logging"
	"dashlab/internal/session"
)

// App serves the diagnostics endpoints.
type App struct {
	router *chi.Mux
	log    *logging.Logger
	store  session.Store
	caches map[string]*cache.Cache
}

// New builds the ops router over the session store and the named caches.
func New(store session.Store, caches map[string]*cache.Cache, logger *logging.Logger) *App {
	a := &App{
		router: chi.NewRouter(),
		log:    logger,
		store:  store,
		caches: caches,
	}

	a.router.Use(middleware.Recoverer)
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/stats/cache", a.handleCacheStats)
	a.router.Get("/stats/sessions", a.handleSessionStats)
	a.router.Mount("/debug", middleware.Profiler())

	return a
}

// Router exposes the handler for tests and embedding.
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the ops server, blocking until it exits.
func (a *App) Start(addr string) error {
	a.log.Info("starting ops server on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, map[string]string{"status": "ok"})
}

func (a *App) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]cache.Stats, len(a.caches))
	for name, c := range a.caches {
		stats[name] = c.Stats()
	}
	a.writeJSON(w, stats)
}

func (a *App) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.Stats(r.Context())
	if err != nil {
		a.log.Error("[handleSessionStats] %v", err)
		http.Error(w, "session stats unavailable", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, stats)
}

func (a *App) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("[writeJSON] %v", err)
	}
}
