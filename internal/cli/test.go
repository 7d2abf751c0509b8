package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/mdbook-github-authors/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // case name filter (glob pattern)
}

// CaseResult holds the result of a single case.
type CaseResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Cases  []CaseResult `json:"cases"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <cases-dir>",
		Short: "Run conformance cases",
		Long: `Run YAML conformance cases against the directive rewriter.

Each case gives an input document and the expected text and authors
after rewriting.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (invalid paths, malformed cases, etc.)

Examples:
  mdbook-github-authors test ./testdata/cases
  mdbook-github-authors test ./testdata/cases --filter "escaped*"
  mdbook-github-authors test ./testdata/cases --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern on the case name")

	return cmd
}

func runTests(opts *TestOptions, casesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(casesDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("cases directory not found: %s", casesDir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}

	cases, err := harness.LoadDir(casesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load cases", err)
	}

	selected := make([]*harness.Case, 0, len(cases))
	for _, c := range cases {
		if opts.Filter != "" {
			if ok, _ := filepath.Match(opts.Filter, c.Name); !ok {
				formatter.VerboseLog("skipping %s", c.Name)
				continue
			}
		}
		selected = append(selected, c)
	}

	result := TestResult{
		Cases: make([]CaseResult, 0, len(selected)),
		Total: len(selected),
	}
	for _, res := range harness.RunAll(selected) {
		result.Cases = append(result.Cases, CaseResult{
			Name:   res.Name,
			Pass:   res.Pass,
			Errors: res.Errors,
		})
		if res.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputTestText(formatter, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d case(s) failed", result.Failed, result.Total))
	}
	return nil
}

func outputTestText(formatter *OutputFormatter, result TestResult) {
	w := formatter.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No cases matched.")
		return
	}
	for _, c := range result.Cases {
		if c.Pass {
			fmt.Fprintf(w, "✓ %s\n", c.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", c.Name)
		for _, e := range c.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
