package ledger

import "cmp"

// rank orders kinds for the reconciliation scan: Remove > Edit > Lend/Return.
func rank(k Kind) int {
	switch k.(type) {
	case Remove:
		return 2
	case Edit:
		return 1
	default:
		return 0
	}
}

// Compare is the total order used to scan overlays. Removes sort above Edits,
// Edits above Lends and Returns, and within the same rank the larger sequence
// number is greater. Sorting descending by Compare puts the newest Remove first.
func Compare(a, b Operation) int {
	if c := cmp.Compare(rank(a.Kind), rank(b.Kind)); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

// NextSeq returns the sequence number for the next appended operation:
// one more than the largest in the log, or 1 for an empty log.
func NextSeq(ops []Operation) int64 {
	if len(ops) == 0 {
		return 1
	}
	highest := ops[0].Seq
	for _, op := range ops[1:] {
		if op.Seq > highest {
			highest = op.Seq
		}
	}
	return highest + 1
}
