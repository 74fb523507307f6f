package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the client.
//
// Fields:
//   - BaseURL: root of the backend REST API, e.g. "http://localhost:8000/api".
//   - RequestTimeout: ceiling for every backend request.
//   - DatabasePath: SQLite file holding the durable session slots.
//   - ProfilePath: profile endpoint, "/auth/user" or "/users/me".
//   - VerifyOnStart: check a restored session against the backend in the background.
//   - VerifyAttempts: how often that check is tried while the backend is unreachable.
//   - LogLevel, LogFormat: slog level name and "text" or "json".
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabasePath   string
	ProfilePath    string
	VerifyOnStart  bool
	VerifyAttempts int
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8000/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "session.db"
	c.ProfilePath = "/auth/user"
	c.VerifyOnStart = true
	c.VerifyAttempts = 3
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from os.Args. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load constructs a Config, applies defaults, then overlays values from
// JSON (if a file is named in args) and command-line flags. Later sources
// take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
