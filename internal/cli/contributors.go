package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/mdbook-github-authors/internal/store"
)

// ContributorsOptions holds flags for the contributors command.
type ContributorsOptions struct {
	*RootOptions
	RunID string
}

// ContributorsResult is the output of the contributors command.
type ContributorsResult struct {
	RunID        string              `json:"run_id"`
	Contributors []store.Contributor `json:"contributors"`
}

// NewContributorsCommand creates the contributors command.
func NewContributorsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ContributorsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "contributors",
		Short: "Summarize the authors recorded in the ledger",
		Long: `Summarize the authors recorded by a preprocessing run, most
mentioned first. Usernames that differ only in case or Unicode
normalization are counted together.

Examples:
  mdbook-github-authors contributors --db ./authors.db
  mdbook-github-authors contributors --db ./authors.db --run 0192...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContributors(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to summarize (default: latest run)")

	return cmd
}

func runContributors(opts *ContributorsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, "ledger not found: "+opts.Database, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("ledger not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	runID := opts.RunID
	if runID == "" {
		runID, err = st.LatestRun(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			_ = formatter.Error(ErrCodeNoRuns, err.Error(), nil)
			return WrapExitError(ExitFailure, "nothing to summarize", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read ledger", err)
		}
	}
	formatter.VerboseLog("summarizing run %s", runID)

	contributors, err := st.Contributors(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}

	result := ContributorsResult{RunID: runID, Contributors: contributors}
	if opts.Format == "json" {
		return formatter.SuccessWithTrace(result, runID)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s\n", runID)
	if len(contributors) == 0 {
		fmt.Fprintln(w, "No authors recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tMENTIONS\tCHAPTERS")
	for _, c := range contributors {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Username, c.Mentions, c.Chapters)
	}
	return tw.Flush()
}
