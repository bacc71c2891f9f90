package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/lendlog/internal/planner"
)

// Edit appends a correction overwriting the item and destination of an
// earlier Lend or Return. The target must exist and must not itself be a
// correction. Use DryRun to preview the target before confirming.
func (e *Engine) Edit(ctx context.Context, req *EditRequest) (*MutationResult, error) {
	if strings.TrimSpace(req.NewItem) == "" {
		return nil, fmt.Errorf("%w: new item id must not be empty", ErrValidation)
	}

	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	plan := planner.BuildEditPlan(log, req.Target, req.NewItem, req.NewDestination, planner.Options{
		Now:    e.clock.Now(),
		Strict: e.strict,
	})
	return e.commit(ctx, plan, req.DryRun)
}

// Remove appends a correction erasing an earlier Lend or Return from the
// reconciled log. The original entry stays in the persisted log.
func (e *Engine) Remove(ctx context.Context, req *RemoveRequest) (*MutationResult, error) {
	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	plan := planner.BuildRemovePlan(log, req.Target, planner.Options{
		Now:    e.clock.Now(),
		Strict: e.strict,
	})
	return e.commit(ctx, plan, req.DryRun)
}
