package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/lendlog/internal/planner"
)

// Lend records every item in req.Items going out to req.Destination.
//
// The batch is all-or-nothing: when any item conflicts, nothing is appended.
// An item that is already lent is a warning, or a conflict in strict mode.
func (e *Engine) Lend(ctx context.Context, req *LendRequest) (*MutationResult, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	plan := planner.BuildLendPlan(log, req.Items, req.Destination, planner.Options{
		Now:    e.clock.Now(),
		Strict: e.strict,
	})
	return e.commit(ctx, plan, req.DryRun)
}

// Return records every item in req.Items coming back from req.Destination.
//
// A return naming a different destination than the open loan is always a
// conflict. A return with no open loan is a warning, or a conflict in
// strict mode.
func (e *Engine) Return(ctx context.Context, req *ReturnRequest) (*MutationResult, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	plan := planner.BuildReturnPlan(log, req.Items, req.Destination, planner.Options{
		Now:    e.clock.Now(),
		Strict: e.strict,
	})
	return e.commit(ctx, plan, req.DryRun)
}

func validateItems(items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: item id must not be empty", ErrValidation)
		}
	}
	return nil
}
