// Package stores persists the lending operation log.
//
// A store only loads and appends. It never rewrites, reorders or drops an
// operation; corrections live in the log as Edit and Remove overlays and are
// resolved by the ledger package. Two backends exist:
//   - CSVStore: one record per operation, compatible with older event files
//   - SQLiteStore: one row per operation in a local SQLite database
//
// Both append a batch all-or-nothing.
package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/lendlog/internal/config"
	"github.com/danieljhkim/lendlog/internal/fsops"
	"github.com/danieljhkim/lendlog/internal/ledger"
)

// ErrDuplicateSeq indicates an appended operation reuses an existing sequence number.
var ErrDuplicateSeq = errors.New("duplicate sequence number")

// OperationStore provides the persisted, time-ordered operation log.
type OperationStore interface {
	// Load returns every persisted operation in file order.
	// A missing log is an empty log.
	Load(ctx context.Context) ([]ledger.Operation, error)

	// Append persists ops after the existing log. Either every operation
	// is written or none is.
	Append(ctx context.Context, ops []ledger.Operation) error

	// Close releases any resources held by the store.
	Close() error
}

// Open returns the store configured by cfg.
func Open(cfg *config.Config, fs fsops.FS) (OperationStore, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return OpenSQLite(cfg.Data)
	case config.BackendCSV, "":
		return NewCSVStore(fs, cfg.Data), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// checkBatch rejects a batch that reuses a sequence number, either within
// itself or against the existing log.
func checkBatch(existing, batch []ledger.Operation) error {
	seen := make(map[int64]struct{}, len(existing)+len(batch))
	for _, op := range existing {
		seen[op.Seq] = struct{}{}
	}
	for _, op := range batch {
		if op.Kind == nil {
			return fmt.Errorf("operation %d has no kind", op.Seq)
		}
		if _, dup := seen[op.Seq]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateSeq, op.Seq)
		}
		seen[op.Seq] = struct{}{}
	}
	return nil
}
