package integration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danieljhkim/lendlog/internal/clock"
	"github.com/danieljhkim/lendlog/internal/config"
	"github.com/danieljhkim/lendlog/internal/engine"
	"github.com/danieljhkim/lendlog/internal/fsops"
	"github.com/danieljhkim/lendlog/internal/stores"
)

var eventStart = time.Date(2021, 1, 23, 9, 0, 0, 0, clock.OffsetZone(9))

// setupTestEngine creates an engine over a real log file of the given
// backend in a temp dir. The returned config lets a test reopen the log.
func setupTestEngine(t *testing.T, backend string, strict bool) (*engine.Engine, *clock.FakeClock, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		Root:           t.TempDir(),
		Backend:        backend,
		UTCOffsetHours: 9,
		Strict:         strict,
	}
	cfg.Data = cfg.DefaultDataPath()

	clk := clock.NewFakeClock(eventStart)
	return openEngine(t, cfg, clk), clk, cfg
}

// openEngine opens the store described by cfg and closes it with the test.
func openEngine(t *testing.T, cfg *config.Config, clk clock.Clock) *engine.Engine {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}
	store, err := stores.Open(cfg, fsops.NewRealFS())
	if err != nil {
		t.Fatalf("stores.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return engine.New(store, clk, nil, cfg.Strict)
}

// backends lists every storage backend the scenarios run against.
var backends = []string{config.BackendCSV, config.BackendSQLite}

func withData(cfg *config.Config, name string) *config.Config {
	copied := *cfg
	copied.Data = filepath.Join(cfg.Root, name)
	return &copied
}
