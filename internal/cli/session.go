package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danieljhkim/lendlog/internal/engine"
	"github.com/danieljhkim/lendlog/internal/intent"
)

// session runs classified commands against one app. The one-shot
// subcommands and the interactive shell share it.
type session struct {
	app *app
	in  *bufio.Reader

	// assumeYes skips the Edit/Remove confirmation prompt
	assumeYes bool

	// dryRun plans mutations without appending them
	dryRun bool
}

func newSession(a *app, in io.Reader) *session {
	return &session{app: a, in: bufio.NewReader(in)}
}

// run executes one intent. history is the shell's input so far, owned by
// the caller; one-shot commands pass nil. It reports whether the shell
// should exit.
func (s *session) run(ctx context.Context, in intent.Intent, history []string) (bool, error) {
	switch in := in.(type) {
	case intent.Noop:
		return false, nil
	case intent.Exit:
		return true, nil
	case intent.Help:
		printShellHelp()
		return false, nil
	case intent.History:
		printHistory(history, in.N)
		return false, nil
	case intent.Lend:
		return false, s.lend(ctx, in)
	case intent.Return:
		return false, s.ret(ctx, in)
	case intent.Edit:
		return false, s.correct(ctx, &engine.EditRequest{
			Target:         in.Target,
			NewItem:        in.NewItem,
			NewDestination: in.NewDestination,
		}, nil)
	case intent.Remove:
		return false, s.correct(ctx, nil, &engine.RemoveRequest{Target: in.Target})
	case intent.Show:
		return false, s.show(ctx, in)
	case intent.All:
		return false, s.all(ctx)
	case intent.Check:
		return false, s.check(ctx)
	default:
		return false, fmt.Errorf("unsupported command %T", in)
	}
}

func (s *session) lend(ctx context.Context, in intent.Lend) error {
	result, err := s.app.eng.Lend(ctx, &engine.LendRequest{
		Items:       in.Items,
		Destination: in.Destination,
		DryRun:      s.dryRun,
	})
	return s.report(result, err)
}

func (s *session) ret(ctx context.Context, in intent.Return) error {
	result, err := s.app.eng.Return(ctx, &engine.ReturnRequest{
		Items:       in.Items,
		Destination: in.Destination,
		DryRun:      s.dryRun,
	})
	return s.report(result, err)
}

// correct previews an Edit or Remove, asks for confirmation and appends it.
// Exactly one of edit and remove is non-nil.
func (s *session) correct(ctx context.Context, edit *engine.EditRequest, remove *engine.RemoveRequest) error {
	apply := func(dryRun bool) (*engine.MutationResult, error) {
		if edit != nil {
			req := *edit
			req.DryRun = dryRun
			return s.app.eng.Edit(ctx, &req)
		}
		req := *remove
		req.DryRun = dryRun
		return s.app.eng.Remove(ctx, &req)
	}

	preview, err := apply(true)
	if err != nil || s.dryRun {
		return s.report(preview, err)
	}

	if !s.assumeYes {
		target := preview.Plan.Target
		var question string
		if edit != nil {
			question = fmt.Sprintf("Change operation %d to item %q, destination %q?", target.Seq, edit.NewItem, edit.NewDestination)
		} else {
			question = fmt.Sprintf("Remove operation %d?", target.Seq)
		}
		ok, err := s.confirm(logLine(*target, s.app.names), question)
		if err != nil {
			return err
		}
		if !ok {
			PrintInfo("Cancelled")
			return nil
		}
	}

	result, err := apply(false)
	return s.report(result, err)
}

// confirm shows what is about to change and asks [Y/n]. Any answer other
// than n or no proceeds; end of input cancels.
func (s *session) confirm(subject, question string) (bool, error) {
	w := stdout
	if jsonOutput {
		w = stderr
	}
	fmt.Fprintf(w, "%s\n%s [Y/n] ", subject, question)

	answer, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && answer == "" {
			fmt.Fprintln(w)
			return false, nil
		}
		if !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("failed to read confirmation: %w", err)
		}
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return false, nil
	default:
		return true, nil
	}
}

// report prints a mutation result and passes err through.
func (s *session) report(result *engine.MutationResult, err error) error {
	if result == nil {
		return err
	}
	if jsonOutput {
		if jerr := outputJSON(newMutationView(result, s.dryRun)); jerr != nil {
			return jerr
		}
		return err
	}

	plan := result.Plan
	if plan.HasConflicts() {
		PrintSection("Conflicts Detected")
		for _, conflict := range plan.Conflicts {
			PrintError(fmt.Sprintf("%s: %s", conflict.Subject, conflict.Reason))
		}
		fmt.Fprintln(stdout)
		PrintWarning("Nothing was recorded.")
		return err
	}

	for _, w := range plan.Warnings {
		PrintWarning(w.String())
	}

	if s.dryRun {
		PrintSection("Dry Run")
		PrintInfo(fmt.Sprintf("Would record %s", PrintCount(len(plan.Operations), "operation", "operations")))
		lines := make([]string, 0, len(plan.Operations))
		for _, op := range plan.Operations {
			lines = append(lines, logLine(op, s.app.names))
		}
		PrintList(lines, 1)
		return err
	}

	for _, op := range result.Applied {
		PrintSuccess(fmt.Sprintf("(%d) %s", op.Seq, describe(op, s.app.names)))
	}
	return err
}

func (s *session) show(ctx context.Context, in intent.Show) error {
	result, err := s.app.eng.Show(ctx, &engine.ShowRequest{
		ItemPattern: in.ItemPattern,
		DestPattern: in.DestPattern,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(newLoanViews(result.Loans, s.app.names))
	}

	if len(result.Loans) == 0 {
		PrintEmptyState("Nothing is currently lent")
		return nil
	}

	rows := make([][]string, 0, len(result.Loans))
	for _, l := range result.Loans {
		rows = append(rows, []string{
			fmt.Sprintf("(%d)", l.OpenedAt),
			l.LentAt.Format(timeLayout),
			s.app.names.ItemLabel(l.Item),
			s.app.names.DestinationLabel(l.Destination),
		})
	}
	PrintTable([]string{"Seq", "Time", "Item", "Destination"}, rows)
	if in.ItemPattern != nil {
		PrintEmptyState(fmt.Sprintf("%d of %s shown", len(result.Loans), PrintCount(result.Total, "open loan", "open loans")))
	}
	return nil
}

func (s *session) all(ctx context.Context) error {
	result, err := s.app.eng.All(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(newOperationViews(result.Operations))
	}
	if len(result.Operations) == 0 {
		PrintEmptyState("The log is empty")
		return nil
	}
	for _, op := range result.Operations {
		PrintInfo(logLine(op, s.app.names))
	}
	return nil
}

func (s *session) check(ctx context.Context) error {
	result, err := s.app.eng.Check(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(newDiagnosticViews(result.Diagnostics))
	}

	mode := "warn"
	if s.app.eng.Strict() {
		mode = "strict"
	}
	PrintLabelValue("Log", s.app.cfg.Data)
	PrintLabelValue("Mode", mode)
	PrintInfo("Checking the log\n--- --- ---")
	for _, d := range result.Diagnostics {
		PrintWarning(d.String())
	}
	PrintInfo("--- --- ---")
	if result.OK() {
		PrintSuccess(fmt.Sprintf("No problems in %s", PrintCount(result.Checked, "operation", "operations")))
	} else {
		PrintWarning(fmt.Sprintf("Found %s", PrintCount(len(result.Diagnostics), "problem", "problems")))
	}
	return nil
}

// printHistory prints the last n entries of history, numbered from 1.
func printHistory(history []string, n int) {
	start := len(history) - n
	if start < 0 {
		start = 0
	}
	for i := start; i < len(history); i++ {
		PrintInfo(fmt.Sprintf("%d: %s", i+1, history[i]))
	}
}
