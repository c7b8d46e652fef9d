package config

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"dashlab/internal/errors"
)

// Secrets holds the key-value settings read from the TOML secrets file.
// The file lives outside the code and is never committed; a missing file
// is tolerated so labs that need no secrets still run.
//
// Expected shape:
//
//	[connections.sheets]
//	spreadsheet = "https://docs.google.com/spreadsheets/d/XXXX/export?format=csv"
//
//	[api]
//	some_token = "..."
type Secrets struct {
	Connections map[string]Connection `toml:"connections"`
	Extra       map[string]map[string]string
}

// Connection is one [connections.<name>] block.
type Connection struct {
	Spreadsheet string `toml:"spreadsheet"`
	URL         string `toml:"url"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
}

// LoadSecrets parses the secrets file. A missing file yields empty
// secrets, not an error; a malformed file is an error.
func LoadSecrets(path string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Secrets{Connections: map[string]Connection{}, Extra: map[string]map[string]string{}}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var s Secrets
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if s.Connections == nil {
		s.Connections = map[string]Connection{}
	}

	// Keep every non-connection table available as plain strings so the
	// secrets lab can list (redacted) what is configured.
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err == nil {
		s.Extra = map[string]map[string]string{}
		for section, v := range raw {
			if section == "connections" {
				continue
			}
			kv, ok := v.(map[string]any)
			if !ok {
				continue
			}
			flat := map[string]string{}
			for k, val := range kv {
				if str, ok := val.(string); ok {
					flat[k] = str
				}
			}
			if len(flat) > 0 {
				s.Extra[section] = flat
			}
		}
	}
	return &s, nil
}

// SpreadsheetURL returns the configured sheet connection URL, if any.
func (s *Secrets) SpreadsheetURL(name string) (string, error) {
	conn, ok := s.Connections[name]
	if !ok {
		return "", errors.SecretMissing("connections." + name)
	}
	url := conn.Spreadsheet
	if url == "" {
		url = conn.URL
	}
	if url == "" {
		return "", errors.SecretMissing("connections." + name + ".spreadsheet")
	}
	return url, nil
}

// Redact masks a secret value for display, keeping only a short prefix.
func Redact(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:8] + strings.Repeat("*", 8)
}
