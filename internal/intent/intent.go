// Package intent classifies a line of shell input into a typed command.
//
// Input is split on whitespace. The first field names the command and is
// matched case-insensitively; "l" and "r" abbreviate lend and return, and a
// line whose first field starts with "#" is a comment.
package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrUnknownCommand indicates the first field names no command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage indicates the command exists but its arguments are wrong.
	ErrUsage = errors.New("invalid arguments")
)

// DefaultHistory is the number of history entries shown by a bare "history".
const DefaultHistory = 10

// Intent is one classified command.
type Intent interface {
	intent()
}

// Lend records each item going out to Destination.
type Lend struct {
	Items       []string
	Destination string
}

// Return records each item coming back from Destination.
type Return struct {
	Items       []string
	Destination string
}

// Edit corrects the item and destination of operation Target.
type Edit struct {
	Target         int64
	NewItem        string
	NewDestination string
}

// Remove erases operation Target.
type Remove struct {
	Target int64
}

// Show lists open loans. Both patterns are set or both are nil.
type Show struct {
	ItemPattern *regexp.Regexp
	DestPattern *regexp.Regexp
}

// All lists every recorded operation.
type All struct{}

// Check runs the consistency validator.
type Check struct{}

// History prints the last N input lines.
type History struct {
	N int
}

// Help prints the command summary.
type Help struct{}

// Exit leaves the shell.
type Exit struct{}

// Noop is an empty line or a comment.
type Noop struct{}

func (Lend) intent()    {}
func (Return) intent()  {}
func (Edit) intent()    {}
func (Remove) intent()  {}
func (Show) intent()    {}
func (All) intent()     {}
func (Check) intent()   {}
func (History) intent() {}
func (Help) intent()    {}
func (Exit) intent()    {}
func (Noop) intent()    {}

// ParseLine splits line on whitespace and classifies it.
func ParseLine(line string) (Intent, error) {
	return Parse(strings.Fields(line))
}

// Parse classifies pre-split fields.
func Parse(fields []string) (Intent, error) {
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Noop{}, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "exit", "quit":
		return noArgs(name, args, Exit{})
	case "help":
		return noArgs(name, args, Help{})
	case "all":
		return noArgs(name, args, All{})
	case "check":
		return noArgs(name, args, Check{})
	case "history":
		return parseHistory(args)
	case "show":
		return parseShow(args)
	case "lend", "l":
		items, dest, err := itemsAndDestination("lend", args)
		if err != nil {
			return nil, err
		}
		return Lend{Items: items, Destination: dest}, nil
	case "return", "r":
		items, dest, err := itemsAndDestination("return", args)
		if err != nil {
			return nil, err
		}
		return Return{Items: items, Destination: dest}, nil
	case "edit":
		return parseEdit(args)
	case "remove":
		return parseRemove(args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
}

func noArgs(name string, args []string, in Intent) (Intent, error) {
	if len(args) > 0 {
		return nil, usage(name, "takes no arguments")
	}
	return in, nil
}

func parseHistory(args []string) (Intent, error) {
	switch len(args) {
	case 0:
		return History{N: DefaultHistory}, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return nil, usage("history", "count must be a non-negative number")
		}
		return History{N: n}, nil
	default:
		return nil, usage("history", "takes at most one argument")
	}
}

func parseShow(args []string) (Intent, error) {
	switch len(args) {
	case 0:
		return Show{}, nil
	case 2:
		itemRe, err := regexp.Compile(args[0])
		if err != nil {
			return nil, usage("show", fmt.Sprintf("invalid item pattern: %v", err))
		}
		destRe, err := regexp.Compile(args[1])
		if err != nil {
			return nil, usage("show", fmt.Sprintf("invalid destination pattern: %v", err))
		}
		return Show{ItemPattern: itemRe, DestPattern: destRe}, nil
	default:
		return nil, usage("show", "filtering needs both an item and a destination pattern")
	}
}

// itemsAndDestination splits "ITEM... DEST": the last field is the
// destination, every field before it an item.
func itemsAndDestination(name string, args []string) ([]string, string, error) {
	switch len(args) {
	case 0:
		return nil, "", usage(name, "needs at least one item")
	case 1:
		return nil, "", usage(name, "needs a destination after the items")
	}
	items := append([]string(nil), args[:len(args)-1]...)
	return items, args[len(args)-1], nil
}

func parseEdit(args []string) (Intent, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, usage("edit", "expects TARGET NEW_ITEM [NEW_DESTINATION]")
	}
	target, err := parseTarget("edit", args[0])
	if err != nil {
		return nil, err
	}
	in := Edit{Target: target, NewItem: args[1]}
	if len(args) == 3 {
		in.NewDestination = args[2]
	}
	return in, nil
}

func parseRemove(args []string) (Intent, error) {
	if len(args) != 1 {
		return nil, usage("remove", "expects exactly one TARGET")
	}
	target, err := parseTarget("remove", args[0])
	if err != nil {
		return nil, err
	}
	return Remove{Target: target}, nil
}

func parseTarget(name, s string) (int64, error) {
	target, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, usage(name, fmt.Sprintf("target %q is not an operation number", s))
	}
	return target, nil
}

func usage(name, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrUsage, name, msg)
}
