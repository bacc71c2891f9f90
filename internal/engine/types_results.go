package engine

import (
	"github.com/danieljhkim/lendlog/internal/ledger"
	"github.com/danieljhkim/lendlog/internal/planner"
)

// MutationResult represents the result of Lend, Return, Edit or Remove.
type MutationResult struct {
	// Plan is the generated plan
	Plan *planner.BatchPlan

	// Applied is the list of operations that were appended (empty if DryRun or blocked)
	Applied []ledger.Operation
}

// ShowResult lists the open loans.
type ShowResult struct {
	// Loans are the open loans matching the filter, oldest first
	Loans []ledger.Loan

	// Total is the number of open loans before filtering
	Total int
}

// AllResult lists the raw log.
type AllResult struct {
	// Operations is every persisted operation, corrections included
	Operations []ledger.Operation
}

// CheckResult is the outcome of validating the reconciled log.
type CheckResult struct {
	// Diagnostics are the problems found, in replay order
	Diagnostics []ledger.Diagnostic

	// Checked is the number of canonical operations replayed
	Checked int
}

// OK reports whether the log is consistent.
func (r *CheckResult) OK() bool {
	return len(r.Diagnostics) == 0
}
