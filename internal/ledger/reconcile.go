package ledger

import (
	"slices"
)

// Organize resolves Edit and Remove overlays and returns the canonical log:
// only Lend and Return entries, ascending by sequence number, each keeping
// its original sequence number and time.
//
// Removes are applied newest first. A Remove erases its target and itself;
// a Remove that was itself erased by a newer Remove has no effect. Among the
// surviving Edits the newest one for a target wins, and it only applies when
// the target is a surviving Lend or Return. Corrections pointing at missing
// operations are silently dropped.
//
// The input slice is not modified.
func Organize(ops []Operation) []Operation {
	if Canonical(ops) {
		return append(make([]Operation, 0, len(ops)), ops...)
	}

	overlays := make([]Operation, 0)
	base := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Kind.(type) {
		case Edit, Remove:
			overlays = append(overlays, op)
		case Lend, Return:
			base = append(base, op)
		}
	}

	// Descending: every Remove is visited before any Edit.
	slices.SortStableFunc(overlays, func(a, b Operation) int {
		return Compare(b, a)
	})

	erased := make(map[int64]struct{})
	edits := make(map[int64]Edit)
	for _, op := range overlays {
		if _, gone := erased[op.Seq]; gone {
			continue
		}
		switch k := op.Kind.(type) {
		case Remove:
			erased[k.Target] = struct{}{}
			erased[op.Seq] = struct{}{}
		case Edit:
			if _, seen := edits[k.Target]; !seen {
				edits[k.Target] = k
			}
		}
	}

	canonical := make([]Operation, 0, len(base))
	for _, op := range base {
		if _, gone := erased[op.Seq]; gone {
			continue
		}
		if e, ok := edits[op.Seq]; ok {
			op = applyEdit(op, e)
		}
		canonical = append(canonical, op)
	}
	slices.SortStableFunc(canonical, func(a, b Operation) int {
		return Compare(a, b)
	})
	return canonical
}

// applyEdit overwrites item and destination of a Lend or Return in place.
func applyEdit(op Operation, e Edit) Operation {
	switch op.Kind.(type) {
	case Lend:
		op.Kind = Lend{Item: e.NewItem, Destination: e.NewDestination}
	case Return:
		op.Kind = Return{Item: e.NewItem, Destination: e.NewDestination}
	}
	return op
}

// Canonical reports whether ops is already canonical: no overlays and
// strictly ascending sequence numbers.
func Canonical(ops []Operation) bool {
	for i, op := range ops {
		if op.IsCorrection() {
			return false
		}
		if i > 0 && ops[i-1].Seq >= op.Seq {
			return false
		}
	}
	return true
}
