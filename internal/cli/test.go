package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/contactdb/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run writer scenarios",
		Long: `Run YAML scenarios against a fresh store each, checking step
expectations, assertions and the golden trace under golden/.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  contactdb test ./scenarios
  contactdb test ./scenarios --filter "spouse-*"
  contactdb test ./scenarios --update
  contactdb test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, dir string) error {
	f := opts.formatter(cmd)

	var runOpts []harness.Option
	if opts.Config.Driver != "" {
		runOpts = append(runOpts, harness.WithDriver(opts.Config.Driver))
	}
	if opts.Verbose {
		runOpts = append(runOpts, harness.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	}

	suite, err := harness.RunSuite(cmd.Context(), dir, harness.SuiteOptions{
		Filter: opts.Filter,
		Update: opts.Update,
		Run:    runOpts,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	if opts.Format == "json" {
		if suite.Failed > 0 {
			msg := fmt.Sprintf("%d scenario(s) failed", suite.Failed)
			if err := f.Error("E_TEST_FAILED", msg, suite); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
		return f.Success(suite)
	}

	w := cmd.OutOrStdout()
	if suite.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}
	for _, sr := range suite.Scenarios {
		if sr.Pass {
			suffix := ""
			if sr.Golden == harness.GoldenUpdated {
				suffix = " (golden updated)"
			}
			fmt.Fprintf(w, "✓ %s%s\n", sr.Name, suffix)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", suite.Passed, suite.Failed, suite.Total)
	if suite.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", suite.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
