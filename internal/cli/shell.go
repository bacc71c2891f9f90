package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/lendlog/internal/intent"
)

const shellBanner = `lendlog: record items lent out and returned during an event.
Type help for the list of commands, exit to quit.`

const shellHelp = `Commands (names are case-insensitive):

  help                         show this list
  exit                         leave the shell
  lend ITEM... DEST            record items lent to DEST (alias: l)
  return ITEM... DEST          record items returned from DEST (alias: r)
  edit SEQ ITEM [DEST]         correct the item and destination of operation SEQ
  remove SEQ                   erase operation SEQ from the current state
  show [ITEM_RE DEST_RE]       list open loans, optionally filtered by both patterns
  all                          list every recorded operation
  check                        report double lends and returns without a lend
  history [N]                  show the last N inputs (default 10)
  # ...                        comment, ignored
`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Long: `Start an interactive shell reading one command per line.

Edit and remove ask for confirmation before recording; use --yes to skip it.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := newSession(a, cmd.InOrStdin())
	s.assumeYes = assumeYes
	return shellLoop(cmd.Context(), s)
}

// shellLoop reads and runs commands until exit or end of input. Command
// errors are printed and the loop continues.
func shellLoop(ctx context.Context, s *session) error {
	PrintInfo(shellBanner)

	// history is owned here and only ever appended to
	var history []string
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(stdout, "> ")

		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read command: %w", err)
		}
		eof := err != nil
		if eof && line == "" {
			fmt.Fprintln(stdout)
			return nil
		}

		line = strings.TrimSpace(line)
		if line != "" {
			history = append(history, line)
		}

		in, perr := intent.ParseLine(line)
		switch {
		case errors.Is(perr, intent.ErrUnknownCommand):
			PrintError(fmt.Sprintf("%v. Type help for the list of commands.", perr))
		case perr != nil:
			PrintError(fmt.Sprintf("%v. Type help for usage.", perr))
		default:
			exit, err := s.run(ctx, in, history)
			if err != nil {
				PrintError(err.Error())
			}
			if exit {
				return nil
			}
		}

		if eof {
			return nil
		}
	}
}

func printShellHelp() {
	PrintInfo(shellHelp)
}
