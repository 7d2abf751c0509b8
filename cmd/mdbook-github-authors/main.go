// Command mdbook-github-authors is an mdbook preprocessor that turns
// {{#author}} and {{#authors}} directives into a contributors section.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/mdbook-github-authors/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	cli.ReportFatal(slog.New(slog.NewTextHandler(os.Stderr, nil)), err)
	return cli.GetExitCode(err)
}
