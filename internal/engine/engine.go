// Package engine provides the lending operations called by the CLI.
//
// The engine is the orchestration layer between commands and the lower
// level packages. Every command loads the whole log from the store,
// reconciles it with the ledger package and, for mutations, plans a batch
// with the planner package and appends it only when the plan has no
// conflicts.
//
// Key components:
//   - Engine: main orchestrator holding the store, clock and logger
//   - Lend/Return: record items going out and coming back
//   - Edit/Remove: append corrections to earlier operations
//   - Show/All/Check: read-only views of the reconciled log
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/danieljhkim/lendlog/internal/clock"
	"github.com/danieljhkim/lendlog/internal/ledger"
	"github.com/danieljhkim/lendlog/internal/planner"
	"github.com/danieljhkim/lendlog/internal/stores"
)

// Engine orchestrates all lendlog operations.
// It is the main API surface called by the CLI.
type Engine struct {
	store  stores.OperationStore
	clock  clock.Clock
	logger *slog.Logger
	strict bool
}

// New creates a new Engine with the given dependencies. A nil logger
// discards log output.
func New(store stores.OperationStore, clk clock.Clock, logger *slog.Logger, strict bool) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:  store,
		clock:  clk,
		logger: logger,
		strict: strict,
	}
}

// Strict reports whether DoubleLend and UnmatchedReturn block commands.
func (e *Engine) Strict() bool {
	return e.strict
}

// load returns the full persisted log.
func (e *Engine) load(ctx context.Context) ([]ledger.Operation, error) {
	ops, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}
	return ops, nil
}

// commit appends a conflict-free plan. A plan with conflicts is returned
// with an error matching the first conflict; nothing is written.
func (e *Engine) commit(ctx context.Context, plan *planner.BatchPlan, dryRun bool) (*MutationResult, error) {
	result := &MutationResult{
		Plan:    plan,
		Applied: []ledger.Operation{},
	}

	if plan.HasConflicts() {
		for _, c := range plan.Conflicts {
			e.logger.Debug("conflict", "action", plan.Action, "subject", c.Subject, "reason", c.Reason)
		}
		return result, conflictError(plan.Conflicts)
	}

	for _, w := range plan.Warnings {
		e.logger.Warn("inconsistent log", "action", plan.Action, "kind", string(w.Kind), "item", w.Item, "seq", w.Seq)
	}

	if dryRun {
		return result, nil
	}

	if err := e.store.Append(ctx, plan.Operations); err != nil {
		return nil, fmt.Errorf("failed to append %s: %w", plan.Action, err)
	}
	result.Applied = plan.Operations

	e.logger.Info("recorded operations",
		"action", plan.Action,
		"count", len(plan.Operations),
		"first_seq", plan.Operations[0].Seq,
	)
	return result, nil
}

// conflictError maps the first conflict onto a sentinel error.
func conflictError(conflicts []planner.Conflict) error {
	c := conflicts[0]
	var sentinel error
	switch c.Kind {
	case planner.ConflictMissingTarget:
		sentinel = ErrNotFound
	case planner.ConflictInvalidTarget:
		sentinel = ErrValidation
	default:
		sentinel = ErrConflict
	}
	if len(conflicts) == 1 {
		return fmt.Errorf("%w: %s", sentinel, c.Reason)
	}
	return fmt.Errorf("%w: %s (and %d more)", sentinel, c.Reason, len(conflicts)-1)
}
