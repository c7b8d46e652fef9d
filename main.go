package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"dashlab/adapters/postgres"
	"dashlab/internal/cache"
	"dashlab/internal/config"
	"dashlab/internal/logging"
	"dashlab/internal/ops"
	"dashlab/internal/session"
	"dashlab/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.NewDefault()

	ctx := context.Background()
	store, closeStore, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer closeStore()

	dataCache := cache.New(10 * time.Minute)
	analysisCache := cache.New(5 * time.Minute)

	server, err := ui.NewServer(cfg, store, dataCache, analysisCache, logger)
	if err != nil {
		log.Fatalf("Failed to initialize UI server: %v", err)
	}

	if cfg.Ops.Enabled {
		opsApp := ops.New(store, map[string]*cache.Cache{
			"data":     dataCache,
			"analysis": analysisCache,
		}, logger)
		go func() {
			if err := opsApp.Start(":" + cfg.Ops.Port); err != nil {
				logger.Error("[main] ops server stopped: %v", err)
			}
		}()
	}

	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildSessionStore picks the postgres-backed store when DATABASE_URL is
// set, otherwise the in-memory store with a background sweeper.
func buildSessionStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (session.Store, func(), error) {
	if cfg.Session.DatabaseURL != "" {
		pg, err := postgres.Connect(ctx, cfg.Session.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session state backed by postgres")
		return pg, func() {
			if err := pg.Close(); err != nil {
				logger.Warn("closing session store: %v", err)
			}
		}, nil
	}

	mem := session.NewMemoryStore(24 * time.Hour)
	mem.StartSweeper(ctx, time.Hour)
	logger.Info("session state held in memory")
	return mem, func() {}, nil
}
