package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/wtmobile/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // golden snapshot directory
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scripted form scenarios",
		Long: `Run YAML form scenarios against a private in-memory database.

Each scenario drives the add/edit form step by step and checks the resulting
list, form and records. When a golden snapshot exists for a scenario, the
trace and final page must match it as well.

Golden files are read from <scenarios-dir>/../golden unless --golden is given.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  wtmobile test ./testdata/scenarios
  wtmobile test ./testdata/scenarios --filter "delete_*"
  wtmobile test ./testdata/scenarios --update
  wtmobile test ./testdata/scenarios --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden snapshot directory")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(filepath.Clean(scenariosDir)), "golden")
	}

	suite, err := harness.RunDir(scenariosDir, harness.SuiteOptions{
		Filter:    opts.Filter,
		GoldenDir: goldenDir,
		Update:    opts.Update,
	})
	if err != nil {
		_ = out.Error(ErrCodeGeneric, err.Error(), nil)
		return reportedExitError(ExitCommandError, "failed to run scenarios", err)
	}

	if out.IsJSON() {
		return outputTestJSON(out.Writer, suite)
	}
	return outputTestText(out.Writer, suite, opts.Update)
}

// outputTestJSON outputs the suite result as JSON.
func outputTestJSON(w io.Writer, suite *harness.SuiteResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   suite,
	}
	if suite.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", suite.Failed),
		}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return err
	}
	if suite.Failed > 0 {
		return reportedExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", suite.Failed), nil)
	}
	return nil
}

// outputTestText outputs one line per scenario and a summary.
func outputTestText(w io.Writer, suite *harness.SuiteResult, updated bool) error {
	if suite.TotalScenarios == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	for _, r := range suite.Scenarios {
		if r.Pass {
			if updated {
				fmt.Fprintf(w, "✓ %s (golden updated)\n", r.Scenario)
			} else {
				fmt.Fprintf(w, "✓ %s\n", r.Scenario)
			}
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Scenario)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", suite.Passed, suite.Failed, suite.TotalScenarios)

	if suite.Failed > 0 {
		return reportedExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", suite.Failed), nil)
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
