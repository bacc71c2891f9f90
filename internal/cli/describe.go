package cli

import (
	"fmt"
	"time"

	"github.com/danieljhkim/lendlog/internal/catalog"
	"github.com/danieljhkim/lendlog/internal/engine"
	"github.com/danieljhkim/lendlog/internal/ledger"
	"github.com/danieljhkim/lendlog/internal/planner"
)

// timeLayout is how operation times are shown.
const timeLayout = "2006/01/02 15:04"

// describe renders what an operation did, using catalog names.
func describe(op ledger.Operation, names *catalog.Catalog) string {
	switch k := op.Kind.(type) {
	case ledger.Lend:
		if k.Destination == "" {
			return fmt.Sprintf("%s lent", names.ItemLabel(k.Item))
		}
		return fmt.Sprintf("%s lent to %s", names.ItemLabel(k.Item), names.DestinationLabel(k.Destination))
	case ledger.Return:
		if k.Destination == "" {
			return fmt.Sprintf("%s returned", names.ItemLabel(k.Item))
		}
		return fmt.Sprintf("%s returned from %s", names.ItemLabel(k.Item), names.DestinationLabel(k.Destination))
	case ledger.Edit:
		return fmt.Sprintf("operation %d corrected to item %q, destination %q", k.Target, k.NewItem, k.NewDestination)
	case ledger.Remove:
		return fmt.Sprintf("operation %d removed", k.Target)
	default:
		return "unknown operation"
	}
}

// logLine renders one raw log entry: (seq)  time  "description".
func logLine(op ledger.Operation, names *catalog.Catalog) string {
	return fmt.Sprintf("(%d)  %s  %q", op.Seq, op.Time.Format(timeLayout), describe(op, names))
}

// operationView is the JSON shape of an operation.
type operationView struct {
	Seq            int64     `json:"seq"`
	Time           time.Time `json:"time"`
	Kind           string    `json:"kind"`
	Item           string    `json:"item,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	Target         int64     `json:"target,omitempty"`
	NewItem        string    `json:"new_item,omitempty"`
	NewDestination string    `json:"new_destination,omitempty"`
}

func newOperationView(op ledger.Operation) operationView {
	v := operationView{
		Seq:         op.Seq,
		Time:        op.Time,
		Kind:        op.Tag(),
		Item:        op.Item(),
		Destination: op.Destination(),
	}
	switch k := op.Kind.(type) {
	case ledger.Edit:
		v.Target = k.Target
		v.NewItem = k.NewItem
		v.NewDestination = k.NewDestination
	case ledger.Remove:
		v.Target = k.Target
	}
	return v
}

func newOperationViews(ops []ledger.Operation) []operationView {
	views := make([]operationView, 0, len(ops))
	for _, op := range ops {
		views = append(views, newOperationView(op))
	}
	return views
}

// diagnosticView is the JSON shape of a diagnostic.
type diagnosticView struct {
	Kind     string `json:"kind"`
	Item     string `json:"item"`
	Seq      int64  `json:"seq"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Message  string `json:"message"`
}

func newDiagnosticViews(diags []ledger.Diagnostic) []diagnosticView {
	views := make([]diagnosticView, 0, len(diags))
	for _, d := range diags {
		views = append(views, diagnosticView{
			Kind:     string(d.Kind),
			Item:     d.Item,
			Seq:      d.Seq,
			Expected: d.Expected,
			Got:      d.Got,
			Message:  d.String(),
		})
	}
	return views
}

// mutationView is the JSON output of lend, return, edit and remove.
type mutationView struct {
	Action    string           `json:"action"`
	DryRun    bool             `json:"dry_run,omitempty"`
	Planned   []operationView  `json:"planned"`
	Applied   []operationView  `json:"applied"`
	Warnings  []diagnosticView `json:"warnings"`
	Conflicts []conflictView   `json:"conflicts"`
	Target    *operationView   `json:"target,omitempty"`
}

func newMutationView(result *engine.MutationResult, dryRun bool) mutationView {
	plan := result.Plan
	v := mutationView{
		Action:    plan.Action,
		DryRun:    dryRun,
		Planned:   newOperationViews(plan.Operations),
		Applied:   newOperationViews(result.Applied),
		Warnings:  newDiagnosticViews(plan.Warnings),
		Conflicts: newConflictViews(plan.Conflicts),
	}
	if plan.Target != nil {
		target := newOperationView(*plan.Target)
		v.Target = &target
	}
	return v
}

// conflictView is the JSON shape of a planner conflict.
type conflictView struct {
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	Reason   string `json:"reason"`
	Existing string `json:"existing,omitempty"`
	Incoming string `json:"incoming,omitempty"`
}

func newConflictViews(conflicts []planner.Conflict) []conflictView {
	views := make([]conflictView, 0, len(conflicts))
	for _, c := range conflicts {
		views = append(views, conflictView{
			Kind:     string(c.Kind),
			Subject:  c.Subject,
			Reason:   c.Reason,
			Existing: c.Existing,
			Incoming: c.Incoming,
		})
	}
	return views
}

// loanView is the JSON shape of an open loan.
type loanView struct {
	Item             string    `json:"item"`
	ItemLabel        string    `json:"item_label"`
	Destination      string    `json:"destination"`
	DestinationLabel string    `json:"destination_label"`
	OpenedAt         int64     `json:"opened_at"`
	LentAt           time.Time `json:"lent_at"`
}

func newLoanViews(loans []ledger.Loan, names *catalog.Catalog) []loanView {
	views := make([]loanView, 0, len(loans))
	for _, l := range loans {
		views = append(views, loanView{
			Item:             l.Item,
			ItemLabel:        names.ItemLabel(l.Item),
			Destination:      l.Destination,
			DestinationLabel: names.DestinationLabel(l.Destination),
			OpenedAt:         l.OpenedAt,
			LentAt:           l.LentAt,
		})
	}
	return views
}
