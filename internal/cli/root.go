package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mdbook-github-authors/internal/book"
	"github.com/roach88/mdbook-github-authors/internal/config"
	"github.com/roach88/mdbook-github-authors/internal/preprocess"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // ledger path, overrides the book's ledger option

	// RunIDs overrides the run ID generator (for testing).
	// If nil, defaults to preprocess.UUIDv7Generator.
	RunIDs preprocess.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Invoked without a subcommand it
// runs the preprocessor over stdin, which is how mdbook calls it.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdbook-github-authors",
		Short: "mdbook preprocessor for GitHub author credits",
		Long: `An mdbook preprocessor that replaces {{#author name}} and
{{#authors a,b}} directives with a contributors section linking each
GitHub profile.

mdbook runs the command with no arguments, writing [context, book] JSON
to stdin and reading the rewritten book from stdout. It first asks
whether a renderer is supported with "supports <renderer>".

Configure it in book.toml:

  [preprocessor.github-authors]
  heading = "Written by:"
  ledger = "authors.db"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(opts, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the SQLite authors ledger")

	cmd.AddCommand(NewSupportsCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewContributorsCommand(opts))

	return cmd
}

func runPreprocess(opts *RootOptions, cmd *cobra.Command) error {
	p := &preprocess.Preprocessor{
		Logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
		RunIDs: opts.RunIDs,
		Ledger: opts.Database,
	}

	_, err := p.Process(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	if err == nil {
		return nil
	}

	var cfgErr *config.Error
	switch {
	case book.IsProtocolError(err):
		return WrapExitError(ExitCommandError, "invalid preprocessor input", err)
	case errors.As(err, &cfgErr):
		return WrapExitError(ExitCommandError, "invalid book configuration", err)
	default:
		return WrapExitError(ExitFailure, "preprocessing failed", err)
	}
}

// newLogger returns a text logger on w. Stdout carries protocol output, so
// callers pass stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
