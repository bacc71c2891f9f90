package ledger

import (
	"fmt"
	"time"
)

// Kind is the closed set of recorded actions: Lend, Return, Edit or Remove.
// The marker method is unexported so no other package can add variants.
type Kind interface {
	kind() string
}

// Lend records an item going out, optionally to a known destination.
type Lend struct {
	Item        string
	Destination string
}

// Return records an item coming back, optionally from a known destination.
type Return struct {
	Item        string
	Destination string
}

// Edit overwrites the item and destination of an earlier Lend or Return.
type Edit struct {
	Target         int64
	NewItem        string
	NewDestination string
}

// Remove erases an earlier operation from the canonical log.
type Remove struct {
	Target int64
}

func (Lend) kind() string   { return KindLend }
func (Return) kind() string { return KindReturn }
func (Edit) kind() string   { return KindEdit }
func (Remove) kind() string { return KindRemove }

// Kind tags as written to persisted records.
const (
	KindLend   = "Lend"
	KindReturn = "Return"
	KindEdit   = "Edit"
	KindRemove = "Remove"
)

// Operation is one appended entry of the log.
type Operation struct {
	// Seq is assigned once at append time and never reused.
	Seq int64

	// Time is when the operator recorded the action.
	Time time.Time

	Kind Kind
}

// Tag returns the kind tag of the operation ("Lend", "Return", ...).
func (op Operation) Tag() string {
	if op.Kind == nil {
		return ""
	}
	return op.Kind.kind()
}

// IsCorrection reports whether the operation is an Edit or Remove overlay.
func (op Operation) IsCorrection() bool {
	switch op.Kind.(type) {
	case Edit, Remove:
		return true
	default:
		return false
	}
}

// Item returns the item of a Lend or Return, or "" for corrections.
func (op Operation) Item() string {
	switch k := op.Kind.(type) {
	case Lend:
		return k.Item
	case Return:
		return k.Item
	default:
		return ""
	}
}

// Destination returns the destination of a Lend or Return, or "" for corrections.
func (op Operation) Destination() string {
	switch k := op.Kind.(type) {
	case Lend:
		return k.Destination
	case Return:
		return k.Destination
	default:
		return ""
	}
}

// String renders the operation for logs and error messages.
func (op Operation) String() string {
	switch k := op.Kind.(type) {
	case Lend:
		return fmt.Sprintf("(%d) lend %s to %q", op.Seq, k.Item, k.Destination)
	case Return:
		return fmt.Sprintf("(%d) return %s from %q", op.Seq, k.Item, k.Destination)
	case Edit:
		return fmt.Sprintf("(%d) edit #%d to item %s, destination %q", op.Seq, k.Target, k.NewItem, k.NewDestination)
	case Remove:
		return fmt.Sprintf("(%d) remove #%d", op.Seq, k.Target)
	default:
		return fmt.Sprintf("(%d) <invalid>", op.Seq)
	}
}

// Find returns the operation with the given sequence number.
func Find(ops []Operation, seq int64) (Operation, bool) {
	for _, op := range ops {
		if op.Seq == seq {
			return op, true
		}
	}
	return Operation{}, false
}

// Loan is an item currently out, derived by projection. It is never persisted.
type Loan struct {
	Item        string
	Destination string

	// OpenedAt is the sequence number of the Lend that opened the loan.
	OpenedAt int64

	// LentAt is the time of that Lend.
	LentAt time.Time
}
