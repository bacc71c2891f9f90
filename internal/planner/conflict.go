package planner

import (
	"fmt"

	"github.com/danieljhkim/lendlog/internal/ledger"
)

// ConflictChecker decides whether a diagnostic blocks a batch.
//
// DestinationMismatch always blocks. DoubleLend and UnmatchedReturn only
// block in strict mode and are warnings otherwise.
type ConflictChecker struct {
	strict bool
}

// NewConflictChecker creates a new ConflictChecker.
func NewConflictChecker(strict bool) *ConflictChecker {
	return &ConflictChecker{strict: strict}
}

// Blocking reports whether diagnostics of kind k block a batch.
func (c *ConflictChecker) Blocking(k ledger.DiagnosticKind) bool {
	switch k {
	case ledger.DestinationMismatch:
		return true
	case ledger.DoubleLend, ledger.UnmatchedReturn:
		return c.strict
	default:
		return false
	}
}

// Record files d into plan as a conflict or a warning.
func (c *ConflictChecker) Record(plan *BatchPlan, d ledger.Diagnostic) {
	if !c.Blocking(d.Kind) {
		plan.AddWarning(d)
		return
	}
	plan.AddConflict(stateConflict(d))
}

func stateConflict(d ledger.Diagnostic) Conflict {
	conflict := Conflict{
		Kind:    ConflictState,
		Subject: d.Item,
		Reason:  d.String(),
	}
	switch d.Kind {
	case ledger.DoubleLend:
		conflict.Existing = "lent"
		conflict.Incoming = "lend"
	case ledger.UnmatchedReturn:
		conflict.Existing = "not lent"
		conflict.Incoming = "return"
	case ledger.DestinationMismatch:
		conflict.Existing = fmt.Sprintf("lent to %q", d.Expected)
		conflict.Incoming = fmt.Sprintf("return from %q", d.Got)
	}
	return conflict
}

// checkTarget validates the operation a correction refers to. next is the
// sequence number the correction itself would receive.
func checkTarget(log []ledger.Operation, target, next int64) (ledger.Operation, *Conflict) {
	subject := fmt.Sprintf("#%d", target)
	if target >= next {
		return ledger.Operation{}, &Conflict{
			Kind:     ConflictMissingTarget,
			Subject:  subject,
			Reason:   fmt.Sprintf("operation %d has not been recorded yet", target),
			Existing: "none",
		}
	}
	op, ok := ledger.Find(log, target)
	if !ok {
		return ledger.Operation{}, &Conflict{
			Kind:     ConflictMissingTarget,
			Subject:  subject,
			Reason:   fmt.Sprintf("operation %d not found", target),
			Existing: "none",
		}
	}
	if op.IsCorrection() {
		return op, &Conflict{
			Kind:     ConflictInvalidTarget,
			Subject:  subject,
			Reason:   fmt.Sprintf("operation %d is itself a correction (%s)", target, op.Tag()),
			Existing: op.Tag(),
		}
	}
	return op, nil
}
