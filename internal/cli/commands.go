package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/lendlog/internal/intent"
)

var (
	assumeYes bool
	dryRun    bool
)

var lendCmd = &cobra.Command{
	Use:     "lend ITEM... DEST",
	Aliases: []string{"l"},
	Short:   "Record items lent to a destination",
	Long: `Record every ITEM as lent to DEST.

The items are recorded as one batch: if any item conflicts, nothing is
recorded. Lending an item that is already out is a warning, or an error
with --strict.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAs("lend"),
}

var returnCmd = &cobra.Command{
	Use:     "return ITEM... DEST",
	Aliases: []string{"r"},
	Short:   "Record items returned from a destination",
	Long: `Record every ITEM as returned from DEST.

A return from a different destination than the item was lent to is always
refused. Returning an item that is not out is a warning, or an error with
--strict.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAs("return"),
}

var editCmd = &cobra.Command{
	Use:   "edit SEQ NEW_ITEM [NEW_DEST]",
	Short: "Correct the item and destination of an earlier operation",
	Long: `Append a correction replacing the item and destination of lend or
return SEQ. The latest correction of an operation wins. An omitted
NEW_DEST clears the destination.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runAs("edit"),
}

var removeCmd = &cobra.Command{
	Use:   "remove SEQ",
	Short: "Erase an earlier operation from the current state",
	Long: `Append a correction erasing operation SEQ. The original entry stays in
the log. Removing a remove restores its target.`,
	Args: cobra.ExactArgs(1),
	RunE: runAs("remove"),
}

var showCmd = &cobra.Command{
	Use:   "show [ITEM_RE DEST_RE]",
	Short: "List items currently lent",
	Long: `List the open loans, oldest first. With two regular expressions only
loans whose item matches ITEM_RE and destination matches DEST_RE are shown.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return cobra.ExactArgs(2)(cmd, args)
		}
		return cobra.MaximumNArgs(2)(cmd, args)
	},
	RunE: runAs("show"),
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "List every recorded operation",
	Args:  cobra.NoArgs,
	RunE:  runAs("all"),
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report double lends and returns without a lend",
	Args:  cobra.NoArgs,
	RunE:  runAs("check"),
}

// runAs classifies name plus the positional args the same way the shell
// does and runs the result once.
func runAs(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		in, err := intent.Parse(append([]string{name}, args...))
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s := newSession(a, cmd.InOrStdin())
		s.assumeYes = assumeYes
		s.dryRun = dryRun
		_, err = s.run(cmd.Context(), in, nil)
		return err
	}
}

func init() {
	for _, c := range []*cobra.Command{lendCmd, returnCmd, editCmd, removeCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be recorded without recording it")
	}
	for _, c := range []*cobra.Command{editCmd, removeCmd} {
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	}
	shellCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")
}
