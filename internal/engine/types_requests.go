package engine

import "regexp"

// LendRequest represents a request to lend items.
type LendRequest struct {
	// Items are the item ids to lend, recorded in this order
	Items []string

	// Destination is where the items go (may be empty)
	Destination string

	// DryRun performs planning only without appending
	DryRun bool
}

// ReturnRequest represents a request to record returned items.
type ReturnRequest struct {
	// Items are the item ids coming back, recorded in this order
	Items []string

	// Destination is where the items come back from (may be empty)
	Destination string

	// DryRun performs planning only without appending
	DryRun bool
}

// EditRequest represents a request to correct an earlier Lend or Return.
type EditRequest struct {
	// Target is the sequence number of the operation to correct
	Target int64

	NewItem        string
	NewDestination string

	// DryRun performs planning only without appending
	DryRun bool
}

// RemoveRequest represents a request to erase an earlier operation.
type RemoveRequest struct {
	// Target is the sequence number of the operation to erase
	Target int64

	// DryRun performs planning only without appending
	DryRun bool
}

// ShowRequest represents a request for the open loans.
type ShowRequest struct {
	// ItemPattern and DestPattern filter the loans. Both must be set or
	// both nil.
	ItemPattern *regexp.Regexp
	DestPattern *regexp.Regexp
}
