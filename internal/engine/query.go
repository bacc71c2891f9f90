package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/lendlog/internal/ledger"
)

// Show returns the loans currently open, oldest first, optionally filtered
// by item and destination patterns.
func (e *Engine) Show(ctx context.Context, req *ShowRequest) (*ShowResult, error) {
	if (req.ItemPattern == nil) != (req.DestPattern == nil) {
		return nil, fmt.Errorf("%w: item and destination patterns must be given together", ErrValidation)
	}

	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	open := ledger.Project(ledger.Organize(log))
	result := &ShowResult{Loans: []ledger.Loan{}, Total: len(open)}
	for _, l := range open {
		if req.ItemPattern != nil &&
			!(req.ItemPattern.MatchString(l.Item) && req.DestPattern.MatchString(l.Destination)) {
			continue
		}
		result.Loans = append(result.Loans, l)
	}
	return result, nil
}

// All returns the raw persisted log, corrections included, in file order.
func (e *Engine) All(ctx context.Context) (*AllResult, error) {
	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return &AllResult{Operations: log}, nil
}

// Check replays the reconciled log and reports every DoubleLend and
// UnmatchedReturn. It never modifies the log.
func (e *Engine) Check(ctx context.Context) (*CheckResult, error) {
	log, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	canonical := ledger.Organize(log)
	diags := ledger.Validate(canonical)
	if diags == nil {
		diags = []ledger.Diagnostic{}
	}
	e.logger.Debug("checked log", "operations", len(log), "canonical", len(canonical), "diagnostics", len(diags))
	return &CheckResult{Diagnostics: diags, Checked: len(canonical)}, nil
}
