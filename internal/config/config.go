package config

import (
	"os"
	"strconv"

	"dashlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Ops     OpsConfig
	Data    DataConfig
	Session SessionConfig
	Secrets *Secrets
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OpsConfig holds the side-port diagnostics server settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// DataConfig holds data source settings
type DataConfig struct {
	// SpreadsheetFile points at a local .xlsx or .csv file. When empty and
	// no remote spreadsheet secret is set, the labs fall back to synthetic
	// data.
	SpreadsheetFile string
	SecretsFile     string
}

// SessionConfig holds session store settings
type SessionConfig struct {
	// DatabaseURL enables the postgres-backed store when set; the
	// in-memory store is used otherwise.
	DatabaseURL string
	CookieName  string
}

// Load reads configuration from environment variables and the secrets
// file, applying defaults suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    envOr("PORT", "8501"),
			GinMode: envOr("GIN_MODE", "release"),
		},
		Ops: OpsConfig{
			Port:    envOr("OPS_PORT", "6060"),
			Enabled: envBool("OPS_ENABLED", true),
		},
		Data: DataConfig{
			SpreadsheetFile: os.Getenv("SPREADSHEET_FILE"),
			SecretsFile:     envOr("SECRETS_FILE", "secrets.toml"),
		},
		Session: SessionConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			CookieName:  envOr("SESSION_COOKIE", "dashlab_session"),
		},
	}

	secrets, err := LoadSecrets(cfg.Data.SecretsFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading secrets file")
	}
	cfg.Secrets = secrets

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, errors.ConfigInvalid("PORT must be numeric: " + cfg.Server.Port)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
