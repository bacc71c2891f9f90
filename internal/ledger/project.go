package ledger

// Project replays a canonical log in ascending order and returns the loans
// still open at the end, oldest first.
//
// A Lend opens a loan. A Return closes every open loan for its item whatever
// the destination; destination mismatches are a commit-time concern, see
// CheckReturnDestination.
func Project(canonical []Operation) []Loan {
	open := []Loan{}
	for _, op := range canonical {
		open = Apply(open, op)
	}
	return open
}

// Apply advances the open loans by one canonical operation. Corrections
// leave open unchanged. The returned slice may share storage with open.
func Apply(open []Loan, op Operation) []Loan {
	switch k := op.Kind.(type) {
	case Lend:
		return append(open, Loan{
			Item:        k.Item,
			Destination: k.Destination,
			OpenedAt:    op.Seq,
			LentAt:      op.Time,
		})
	case Return:
		return closeLoans(open, k.Item)
	case Edit, Remove:
		// resolved by Organize
	}
	return open
}

// closeLoans drops every loan for item, keeping the order of the rest.
func closeLoans(open []Loan, item string) []Loan {
	kept := open[:0]
	for _, l := range open {
		if l.Item != item {
			kept = append(kept, l)
		}
	}
	return kept
}

// OpenFor returns the open loans for item.
func OpenFor(open []Loan, item string) []Loan {
	var out []Loan
	for _, l := range open {
		if l.Item == item {
			out = append(out, l)
		}
	}
	return out
}
