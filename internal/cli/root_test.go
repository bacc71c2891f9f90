package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// setupTestEnv points LENDLOG_ROOT at a temp dir and clears the rest of
// the LENDLOG_* environment.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "LENDLOG_") {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
	root := t.TempDir()
	t.Setenv("LENDLOG_ROOT", root)
	return root
}

// resetFlags clears flag state left behind by an earlier Execute.
func resetFlags() {
	jsonOutput, strict, verbose = false, false, false
	dataPath, catalogPath, backend = "", "", ""
	assumeYes, dryRun = false, false

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// execute runs the CLI with args and input on stdin.
func execute(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var bufOut, bufErr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&bufOut)
	rootCmd.SetErr(&bufErr)
	rootCmd.SetIn(strings.NewReader(input))

	err := rootCmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, want := range []string{"lendlog", "Recording:", "Corrections:", "Inspection:", "lend", "--strict"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version output = %q, want 1.2.3", out)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	setupTestEnv(t)
	_, _, err := execute(t, "", "invalid-command")
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"normal version", "1.2.3", "1.2.3"},
		{"empty version", "", "1.2.3"}, // Should not change if empty
		{"dev version", "dev", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if rootCmd.Version != tt.want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	subcommands := []string{
		"lend", "return", "edit", "remove", "show", "all", "check", "shell", "version", "completion",
	}

	for _, name := range subcommands {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			if err != nil || cmd == rootCmd {
				t.Errorf("subcommand %q not registered", name)
			}
		})
	}
}

func TestRootCommand_Aliases(t *testing.T) {
	for alias, want := range map[string]*cobra.Command{"l": lendCmd, "r": returnCmd} {
		cmd, _, err := rootCmd.Find([]string{alias})
		if err != nil || cmd != want {
			t.Errorf("alias %q does not resolve to %s", alias, want.Name())
		}
	}
}

func TestRootCommand_NoArgsStartsShell(t *testing.T) {
	setupTestEnv(t)

	out, _, err := execute(t, "exit\n")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Type help") {
		t.Errorf("expected the shell banner, got %q", out)
	}
}
