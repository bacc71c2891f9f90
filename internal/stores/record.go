package stores

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danieljhkim/lendlog/internal/ledger"
)

// Column layout of a persisted operation record.
const (
	colTime = iota
	colKind
	colItem
	colDestination
	colTarget
	colNewItem
	colNewDestination
	colSeq
	numColumns
)

// header is written as the first row of a new CSV log.
var header = []string{
	"timestamp",
	"kind",
	"item",
	"destination",
	"target",
	"new_item",
	"new_destination",
	"seq",
}

// encodeRecord flattens an operation into the persisted columns. Lend and
// Return leave the correction columns blank and vice versa.
func encodeRecord(op ledger.Operation) ([]string, error) {
	rec := make([]string, numColumns)
	rec[colTime] = op.Time.Format(time.RFC3339)
	rec[colSeq] = strconv.FormatInt(op.Seq, 10)

	switch k := op.Kind.(type) {
	case ledger.Lend:
		rec[colKind] = ledger.KindLend
		rec[colItem] = k.Item
		rec[colDestination] = k.Destination
	case ledger.Return:
		rec[colKind] = ledger.KindReturn
		rec[colItem] = k.Item
		rec[colDestination] = k.Destination
	case ledger.Edit:
		rec[colKind] = ledger.KindEdit
		rec[colTarget] = strconv.FormatInt(k.Target, 10)
		rec[colNewItem] = k.NewItem
		rec[colNewDestination] = k.NewDestination
	case ledger.Remove:
		rec[colKind] = ledger.KindRemove
		rec[colTarget] = strconv.FormatInt(k.Target, 10)
	default:
		return nil, fmt.Errorf("operation %d: unknown kind %T", op.Seq, op.Kind)
	}
	return rec, nil
}

// decodeRecord parses one persisted record. Kind tags are case-insensitive.
//
// Older event files wrote an Edit's new destination into the destination
// column; when new_destination is blank that column is used instead.
func decodeRecord(rec []string) (ledger.Operation, error) {
	if len(rec) < numColumns {
		return ledger.Operation{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(rec))
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[colTime]))
	if err != nil {
		return ledger.Operation{}, fmt.Errorf("invalid timestamp %q: %w", rec[colTime], err)
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(rec[colSeq]), 10, 64)
	if err != nil {
		return ledger.Operation{}, fmt.Errorf("invalid sequence number %q: %w", rec[colSeq], err)
	}

	op := ledger.Operation{Seq: seq, Time: ts}
	switch strings.ToLower(strings.TrimSpace(rec[colKind])) {
	case "lend":
		op.Kind = ledger.Lend{Item: rec[colItem], Destination: rec[colDestination]}
	case "return":
		op.Kind = ledger.Return{Item: rec[colItem], Destination: rec[colDestination]}
	case "edit":
		target, err := parseTarget(rec[colTarget])
		if err != nil {
			return ledger.Operation{}, err
		}
		dest := rec[colNewDestination]
		if dest == "" {
			dest = rec[colDestination]
		}
		op.Kind = ledger.Edit{Target: target, NewItem: rec[colNewItem], NewDestination: dest}
	case "remove":
		target, err := parseTarget(rec[colTarget])
		if err != nil {
			return ledger.Operation{}, err
		}
		op.Kind = ledger.Remove{Target: target}
	default:
		return ledger.Operation{}, fmt.Errorf("unknown operation kind %q", rec[colKind])
	}
	return op, nil
}

func parseTarget(s string) (int64, error) {
	target, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target %q: %w", s, err)
	}
	return target, nil
}
