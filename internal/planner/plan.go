package planner

import "github.com/danieljhkim/lendlog/internal/ledger"

// BatchPlan is the outcome of planning one command.
type BatchPlan struct {
	// Action is the command that produced the plan: "lend", "return", "edit" or "remove"
	Action string

	// Operations is the batch to append, in sequence order
	Operations []ledger.Operation

	// Conflicts block the whole batch (empty if none)
	Conflicts []Conflict

	// Warnings are diagnostics that do not block
	Warnings []ledger.Diagnostic

	// Target is the operation a correction refers to, when it exists
	Target *ledger.Operation
}

// ConflictKind classifies why a batch is blocked.
type ConflictKind string

const (
	// ConflictState: the batch is inconsistent with the open loans.
	ConflictState ConflictKind = "state"

	// ConflictMissingTarget: a correction names an operation that was never recorded.
	ConflictMissingTarget ConflictKind = "missing_target"

	// ConflictInvalidTarget: a correction names another correction.
	ConflictInvalidTarget ConflictKind = "invalid_target"
)

// Conflict represents a blocking problem detected during planning.
type Conflict struct {
	Kind ConflictKind

	// Subject is the item, or "#<seq>" for a correction target
	Subject string

	// Reason is a human-readable explanation of the conflict
	Reason string

	// Existing describes the current state of the subject
	Existing string

	// Incoming describes what the batch wanted to record
	Incoming string
}

// Action names.
const (
	ActionLend   = "lend"
	ActionReturn = "return"
	ActionEdit   = "edit"
	ActionRemove = "remove"
)

// NewBatchPlan creates a new empty BatchPlan.
func NewBatchPlan(action string) *BatchPlan {
	return &BatchPlan{
		Action:     action,
		Operations: []ledger.Operation{},
		Conflicts:  []Conflict{},
		Warnings:   []ledger.Diagnostic{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *BatchPlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *BatchPlan) AddOperation(op ledger.Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *BatchPlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// AddWarning adds a non-blocking diagnostic to the plan.
func (p *BatchPlan) AddWarning(d ledger.Diagnostic) {
	p.Warnings = append(p.Warnings, d)
}
