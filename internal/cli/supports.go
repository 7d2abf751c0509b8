package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mdbook-github-authors/internal/preprocess"
)

// NewSupportsCommand creates the supports command mdbook calls before
// preprocessing.
func NewSupportsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "supports <renderer>",
		Short: "Check whether a renderer is supported",
		Long: `Check whether the preprocessor supports a renderer.

Exit codes:
  0 - Supported
  1 - Not supported`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSupports(rootOpts, args[0], cmd)
		},
	}
}

func runSupports(opts *RootOptions, renderer string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	p := &preprocess.Preprocessor{}
	if !p.SupportsRenderer(renderer) {
		return NewQuietExitError(ExitFailure, fmt.Sprintf("renderer %q is not supported", renderer))
	}

	formatter.VerboseLog("renderer %q is supported", renderer)
	if opts.Format == "json" {
		return formatter.Success(map[string]any{"renderer": renderer, "supported": true})
	}
	return nil
}
