// Package config resolves lendlog settings and filesystem paths.
//
// Settings come from LENDLOG_* environment variables (parsed with
// caarlos0/env); command-line flags override them. The default data
// directory is ~/.lendlog/ holding the operation log.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/danieljhkim/lendlog/internal/clock"
)

// Storage backends for the operation log.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds every setting the CLI needs to build an engine.
type Config struct {
	// Root is the base directory for lendlog data (default: ~/.lendlog)
	Root string `env:"LENDLOG_ROOT"`

	// Data is the operation log file (default: <Root>/lendlog.csv or lendlog.db)
	Data string `env:"LENDLOG_DATA"`

	// Backend selects the log format: "csv" or "sqlite"
	Backend string `env:"LENDLOG_BACKEND" envDefault:"csv"`

	// Catalog is an optional JSON file mapping ids to display names
	Catalog string `env:"LENDLOG_CATALOG"`

	// UTCOffsetHours is the event's time zone for new operations
	UTCOffsetHours int `env:"LENDLOG_UTC_OFFSET_HOURS" envDefault:"9"`

	// Strict blocks double lends and unmatched returns instead of warning
	Strict bool `env:"LENDLOG_STRICT"`

	// LogLevel is the slog level name for diagnostics on stderr
	LogLevel string `env:"LENDLOG_LOG_LEVEL" envDefault:"warn"`
}

// Overrides are command-line values that take precedence over the
// environment. Empty strings and false leave the environment value.
type Overrides struct {
	Data    string
	Backend string
	Catalog string
	Strict  bool
}

// Load reads the environment and fills in derived defaults.
func Load() (*Config, error) {
	return LoadWith(Overrides{})
}

// LoadWith reads the environment, applies o and fills in derived defaults.
func LoadWith(o Overrides) (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if o.Data != "" {
		cfg.Data = o.Data
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.Catalog != "" {
		cfg.Catalog = o.Catalog
	}
	cfg.Strict = cfg.Strict || o.Strict
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolve validates the backend and offset and derives Root and Data when unset.
func (c *Config) resolve() error {
	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return fmt.Errorf("utc offset %d out of range [-12, 14]", c.UTCOffsetHours)
	}

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = BackendCSV
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendCSV, BackendSQLite)
	}

	if c.Root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		c.Root = filepath.Join(home, ".lendlog")
	}
	if c.Data == "" {
		c.Data = c.DefaultDataPath()
	}
	return nil
}

// DefaultDataPath returns the log file under Root for the configured backend.
func (c *Config) DefaultDataPath() string {
	if c.Backend == BackendSQLite {
		return filepath.Join(c.Root, "lendlog.db")
	}
	return filepath.Join(c.Root, "lendlog.csv")
}

// Location returns the fixed zone new operations are stamped in.
func (c *Config) Location() *time.Location {
	return clock.OffsetZone(c.UTCOffsetHours)
}

// Level parses LogLevel; unknown names fall back to warn.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// EnsureDirectories creates the directory holding the data file.
func (c *Config) EnsureDirectories() error {
	dir := filepath.Dir(c.Data)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
