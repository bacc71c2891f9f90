package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/lendlog/internal/catalog"
	"github.com/danieljhkim/lendlog/internal/clock"
	"github.com/danieljhkim/lendlog/internal/config"
	"github.com/danieljhkim/lendlog/internal/engine"
	"github.com/danieljhkim/lendlog/internal/fsops"
	"github.com/danieljhkim/lendlog/internal/stores"
)

// app bundles what a command needs: the engine and the display names.
type app struct {
	eng   *engine.Engine
	names *catalog.Catalog
	cfg   *config.Config
	store stores.OperationStore
}

// newApp creates an engine with real implementations of all dependencies,
// configured from the environment and the global flags.
func newApp() (*app, error) {
	cfg, err := config.LoadWith(config.Overrides{
		Data:    dataPath,
		Backend: backend,
		Catalog: catalogPath,
		Strict:  strict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Ensure directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	fs := fsops.NewRealFS()
	names, err := catalog.Load(fs, cfg.Catalog)
	if err != nil {
		return nil, err
	}
	store, err := stores.Open(cfg, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	logger := newLogger(cfg)
	logger.Debug("opened log", "backend", cfg.Backend, "path", cfg.Data, "strict", cfg.Strict)

	clk := clock.NewRealClock(cfg.Location())
	return &app{
		eng:   engine.New(store, clk, logger, cfg.Strict),
		names: names,
		cfg:   cfg,
		store: store,
	}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.store.Close()
}

// newLogger writes text records to stderr at the configured level, or at
// debug level with --verbose.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
