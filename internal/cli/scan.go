package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mdbook-github-authors/internal/rewrite"
)

// ScanOccurrence is one directive found by the scan command.
type ScanOccurrence struct {
	Line      int    `json:"line"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Directive string `json:"directive"`
	Payload   string `json:"payload"`
	Raw       string `json:"raw"`
}

// ScanResult is the output of the scan command.
type ScanResult struct {
	File        string           `json:"file"`
	Occurrences []ScanOccurrence `json:"occurrences"`
	Authors     []string         `json:"authors"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file>",
		Short: "List the author directives in a markdown file",
		Long: `List the author directives in a markdown file and the usernames
they expand to, without modifying the file. Use "-" to read stdin.

Examples:
  mdbook-github-authors scan src/chapter_1.md
  mdbook-github-authors scan --format json src/chapter_1.md`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(rootOpts, args[0], cmd)
		},
	}
}

func runScan(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	text, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	result := scanText(path, text)
	formatter.VerboseLog("scanned %s: %d directive(s)", path, len(result.Occurrences))

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, occ := range result.Occurrences {
		fmt.Fprintf(w, "%s:%d: %s\n", path, occ.Line, occ.Raw)
	}
	if len(result.Authors) == 0 {
		fmt.Fprintln(w, "No authors found.")
		return nil
	}
	fmt.Fprintf(w, "Authors: %s\n", strings.Join(result.Authors, ", "))
	return nil
}

func scanText(path, text string) ScanResult {
	rr := rewrite.RewriteDetailed(text)

	result := ScanResult{
		File:        path,
		Occurrences: make([]ScanOccurrence, 0, len(rr.Occurrences)),
		Authors:     rewrite.Usernames(rr.Identities),
	}
	if result.Authors == nil {
		result.Authors = []string{}
	}

	line, lineStart := 1, 0
	for _, occ := range rr.Occurrences {
		line += strings.Count(text[lineStart:occ.Start], "\n")
		lineStart = occ.Start
		result.Occurrences = append(result.Occurrences, ScanOccurrence{
			Line:      line,
			Start:     occ.Start,
			End:       occ.End,
			Directive: occ.Payload.Directive(),
			Payload:   occ.Payload.Field(),
			Raw:       occ.Raw,
		})
	}
	return result
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
