package planner

import (
	"slices"
	"time"

	"github.com/danieljhkim/lendlog/internal/ledger"
)

// Options controls planning.
type Options struct {
	// Now stamps every operation of the batch
	Now time.Time

	// Strict makes DoubleLend and UnmatchedReturn block the batch
	Strict bool
}

// simulation is the reconciled state a batch is checked against. It
// advances as each planned operation is added.
type simulation struct {
	open []ledger.Loan
	next int64
}

func newSimulation(log []ledger.Operation) *simulation {
	return &simulation{
		open: ledger.Project(ledger.Organize(log)),
		next: ledger.NextSeq(log),
	}
}

func (s *simulation) add(plan *BatchPlan, now time.Time, k ledger.Kind) ledger.Operation {
	op := ledger.Operation{Seq: s.next, Time: now, Kind: k}
	plan.AddOperation(op)
	s.open = ledger.Apply(s.open, op)
	s.next++
	return op
}

// BuildLendPlan plans lending each item to dest. An item that is already
// out, or appears twice in items, yields a DoubleLend.
func BuildLendPlan(log []ledger.Operation, items []string, dest string, opts Options) *BatchPlan {
	plan := NewBatchPlan(ActionLend)
	checker := NewConflictChecker(opts.Strict)
	sim := newSimulation(log)

	for _, item := range items {
		if len(ledger.OpenFor(sim.open, item)) > 0 {
			checker.Record(plan, ledger.Diagnostic{Kind: ledger.DoubleLend, Item: item, Seq: sim.next})
		}
		sim.add(plan, opts.Now, ledger.Lend{Item: item, Destination: dest})
	}
	return plan
}

// BuildReturnPlan plans returning each item from dest. An item with no open
// loan yields an UnmatchedReturn; an item lent to a different destination
// yields a DestinationMismatch.
func BuildReturnPlan(log []ledger.Operation, items []string, dest string, opts Options) *BatchPlan {
	plan := NewBatchPlan(ActionReturn)
	checker := NewConflictChecker(opts.Strict)
	sim := newSimulation(log)

	for _, item := range items {
		ret := ledger.Return{Item: item, Destination: dest}
		if len(ledger.OpenFor(sim.open, item)) == 0 {
			checker.Record(plan, ledger.Diagnostic{Kind: ledger.UnmatchedReturn, Item: item, Seq: sim.next})
		} else if d, found := ledger.CheckReturnDestination(sim.open, ret, sim.next); found {
			checker.Record(plan, d)
		}
		sim.add(plan, opts.Now, ret)
	}
	return plan
}

// BuildEditPlan plans overwriting the item and destination of target.
func BuildEditPlan(log []ledger.Operation, target int64, newItem, newDest string, opts Options) *BatchPlan {
	return buildCorrectionPlan(ActionEdit, log, target, opts, ledger.Edit{
		Target:         target,
		NewItem:        newItem,
		NewDestination: newDest,
	})
}

// BuildRemovePlan plans erasing target from the canonical log.
func BuildRemovePlan(log []ledger.Operation, target int64, opts Options) *BatchPlan {
	return buildCorrectionPlan(ActionRemove, log, target, opts, ledger.Remove{Target: target})
}

// buildCorrectionPlan validates the target and reports, as warnings, the
// diagnostics the correction would introduce. Corrections are how an
// inconsistent log gets repaired, so their diagnostics never block.
func buildCorrectionPlan(action string, log []ledger.Operation, target int64, opts Options, k ledger.Kind) *BatchPlan {
	plan := NewBatchPlan(action)
	sim := newSimulation(log)

	targetOp, conflict := checkTarget(log, target, sim.next)
	if conflict != nil {
		plan.AddConflict(*conflict)
		return plan
	}
	plan.Target = &targetOp

	op := sim.add(plan, opts.Now, k)

	before := ledger.Validate(ledger.Organize(log))
	extended := append(append(make([]ledger.Operation, 0, len(log)+1), log...), op)
	for _, d := range ledger.Validate(ledger.Organize(extended)) {
		if !slices.Contains(before, d) {
			plan.AddWarning(d)
		}
	}
	return plan
}
