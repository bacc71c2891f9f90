package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danieljhkim/lendlog/internal/clock"
	"github.com/danieljhkim/lendlog/internal/fsops"
	"github.com/danieljhkim/lendlog/internal/ledger"
	"github.com/danieljhkim/lendlog/internal/stores"
)

var eventStart = time.Date(2021, 1, 23, 9, 0, 0, 0, clock.OffsetZone(9))

// newTestEngine returns an engine over an in-memory CSV log.
func newTestEngine(t *testing.T, strict bool) (*Engine, *fsops.MemFS, *clock.FakeClock) {
	t.Helper()
	fs := fsops.NewMemFS()
	clk := clock.NewFakeClock(eventStart)
	store := stores.NewCSVStore(fs, "/event/log.csv")
	return New(store, clk, nil, strict), fs, clk
}

// mustLend lends items to dest and fails the test on error.
func mustLend(t *testing.T, eng *Engine, dest string, items ...string) *MutationResult {
	t.Helper()
	result, err := eng.Lend(context.Background(), &LendRequest{Items: items, Destination: dest})
	if err != nil {
		t.Fatalf("Lend(%v, %q) failed: %v", items, dest, err)
	}
	return result
}

func loadAll(t *testing.T, eng *Engine) []ledger.Operation {
	t.Helper()
	result, err := eng.All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	return result.Operations
}

type failingStore struct {
	loadErr   error
	appendErr error
	ops       []ledger.Operation
}

func (s *failingStore) Load(ctx context.Context) ([]ledger.Operation, error) {
	return s.ops, s.loadErr
}

func (s *failingStore) Append(ctx context.Context, ops []ledger.Operation) error {
	return s.appendErr
}

func (s *failingStore) Close() error { return nil }

func TestEngine_LoadErrorIsWrapped(t *testing.T) {
	loadErr := errors.New("disk on fire")
	eng := New(&failingStore{loadErr: loadErr}, clock.NewFakeClock(eventStart), nil, false)
	ctx := context.Background()

	if _, err := eng.Lend(ctx, &LendRequest{Items: []string{"A"}}); !errors.Is(err, loadErr) {
		t.Errorf("Lend error = %v, want wrapped load error", err)
	}
	if _, err := eng.Show(ctx, &ShowRequest{}); !errors.Is(err, loadErr) {
		t.Errorf("Show error = %v, want wrapped load error", err)
	}
	if _, err := eng.Check(ctx); !errors.Is(err, loadErr) {
		t.Errorf("Check error = %v, want wrapped load error", err)
	}
}

func TestEngine_AppendErrorIsWrapped(t *testing.T) {
	appendErr := errors.New("read-only")
	eng := New(&failingStore{appendErr: appendErr}, clock.NewFakeClock(eventStart), nil, false)

	result, err := eng.Lend(context.Background(), &LendRequest{Items: []string{"A"}, Destination: "1"})
	if !errors.Is(err, appendErr) {
		t.Fatalf("error = %v, want wrapped append error", err)
	}
	if result != nil {
		t.Error("expected no result when the append fails")
	}
}

func TestEngine_Strict(t *testing.T) {
	lenient, _, _ := newTestEngine(t, false)
	strict, _, _ := newTestEngine(t, true)
	if lenient.Strict() || !strict.Strict() {
		t.Error("Strict() does not reflect the constructor flag")
	}
}
