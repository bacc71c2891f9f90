package ledger

import "fmt"

// DiagnosticKind names a consistency problem found while replaying the log.
type DiagnosticKind string

const (
	// DoubleLend: an item was lent while a loan for it was already open.
	DoubleLend DiagnosticKind = "double_lend"

	// UnmatchedReturn: an item was returned with no open loan for it.
	UnmatchedReturn DiagnosticKind = "unmatched_return"

	// DestinationMismatch: a return names a different destination than the
	// open loan it would close.
	DestinationMismatch DiagnosticKind = "destination_mismatch"
)

// Diagnostic is one non-fatal finding.
type Diagnostic struct {
	Kind DiagnosticKind

	Item string

	// Seq is the operation at which the problem was detected. For a
	// candidate operation that has not been appended yet it is the
	// sequence number it would receive.
	Seq int64

	// Expected and Got describe a DestinationMismatch.
	Expected string
	Got      string
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DoubleLend:
		return fmt.Sprintf("%s is lent twice (operation %d)", d.Item, d.Seq)
	case UnmatchedReturn:
		return fmt.Sprintf("%s is returned without being lent (operation %d)", d.Item, d.Seq)
	case DestinationMismatch:
		return fmt.Sprintf("%s was lent to %q but is returned from %q", d.Item, d.Expected, d.Got)
	default:
		return fmt.Sprintf("%s: %s (operation %d)", d.Kind, d.Item, d.Seq)
	}
}

// Validate replays a canonical log like Project and reports DoubleLend and
// UnmatchedReturn diagnostics in replay order. It never changes the log;
// the replayed state evolves exactly as in Project.
func Validate(canonical []Operation) []Diagnostic {
	var (
		diags []Diagnostic
		open  []Loan
	)
	for _, op := range canonical {
		switch k := op.Kind.(type) {
		case Lend:
			if len(OpenFor(open, k.Item)) > 0 {
				diags = append(diags, Diagnostic{Kind: DoubleLend, Item: k.Item, Seq: op.Seq})
			}
		case Return:
			if len(OpenFor(open, k.Item)) == 0 {
				diags = append(diags, Diagnostic{Kind: UnmatchedReturn, Item: k.Item, Seq: op.Seq})
			}
		case Edit, Remove:
		}
		open = Apply(open, op)
	}
	return diags
}

// CheckReturnDestination is the stricter check applied before committing a
// new Return. It reports a DestinationMismatch when the return names a
// destination and an open loan for the item was lent to a different one.
// Loans lent without a destination match any return.
func CheckReturnDestination(open []Loan, ret Return, seq int64) (Diagnostic, bool) {
	if ret.Destination == "" {
		return Diagnostic{}, false
	}
	for _, l := range OpenFor(open, ret.Item) {
		if l.Destination != "" && l.Destination != ret.Destination {
			return Diagnostic{
				Kind:     DestinationMismatch,
				Item:     ret.Item,
				Seq:      seq,
				Expected: l.Destination,
				Got:      ret.Destination,
			}, true
		}
	}
	return Diagnostic{}, false
}
