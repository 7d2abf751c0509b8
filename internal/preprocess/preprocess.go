// Package preprocess implements the github-authors mdbook preprocessor.
//
// For every chapter it removes {{#author}} and {{#authors}} directives and
// appends a contributors fragment listing the referenced GitHub users.
// Chapters are independent and are processed concurrently.
package preprocess

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/mdbook-github-authors/internal/book"
	"github.com/roach88/mdbook-github-authors/internal/config"
	"github.com/roach88/mdbook-github-authors/internal/render"
	"github.com/roach88/mdbook-github-authors/internal/rewrite"
	"github.com/roach88/mdbook-github-authors/internal/store"
)

// Name is the preprocessor name, and the key of its table in book.toml.
const Name = "github-authors"

// MdbookVersion is the mdbook release this preprocessor is built against.
const MdbookVersion = "0.4.40"

// Preprocessor rewrites books. The zero value is ready to use.
type Preprocessor struct {
	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// RunIDs names each run. Nil means UUIDv7Generator.
	RunIDs RunIDGenerator

	// Ledger, when set, overrides the ledger option from book.toml.
	Ledger string
}

// Report summarizes one run.
type Report struct {
	RunID               string `json:"run_id"`
	Chapters            int    `json:"chapters"`
	ChaptersWithAuthors int    `json:"chapters_with_authors"`
	Identities          int    `json:"identities"`
	Ledger              string `json:"ledger,omitempty"`
}

// SupportsRenderer reports whether the preprocessor can run for renderer.
// The fragment is plain HTML, which every mdbook renderer passes through.
func (p *Preprocessor) SupportsRenderer(renderer string) bool {
	return renderer != ""
}

// Process reads mdbook's [context, book] input from r, rewrites the book and
// writes it to w.
func (p *Preprocessor) Process(ctx context.Context, r io.Reader, w io.Writer) (*Report, error) {
	pctx, b, err := book.ParseInput(r)
	if err != nil {
		return nil, err
	}

	report, err := p.Run(ctx, pctx, b)
	if err != nil {
		return nil, err
	}

	if err := book.WriteBook(w, b); err != nil {
		return nil, err
	}
	return report, nil
}

// Run rewrites every chapter of b in place.
func (p *Preprocessor) Run(ctx context.Context, pctx *book.Context, b *book.Book) (*Report, error) {
	runID := p.runIDs().Generate()
	log := p.logger().With("run_id", runID)

	if pctx.MdbookVersion != MdbookVersion {
		log.Warn("mdbook version mismatch",
			"built_against", MdbookVersion,
			"called_from", pctx.MdbookVersion)
	}

	raw, err := pctx.PreprocessorOptions(Name)
	if err != nil {
		return nil, err
	}
	opts, err := config.Load(raw)
	if err != nil {
		return nil, err
	}
	opts = opts.Resolve(pctx.Root)
	if len(opts.Renderers) > 0 && !slices.Contains(opts.Renderers, pctx.Renderer) {
		log.Warn("renderer not listed in preprocessor renderers",
			"renderer", pctx.Renderer,
			"renderers", opts.Renderers)
	}
	if p.Ledger != "" {
		opts.Ledger = p.Ledger
	}

	renderer, err := render.New(render.Options{
		TemplatePath: opts.Template,
		Heading:      opts.Heading,
		ProfileURL:   opts.ProfileURL,
	})
	if err != nil {
		return nil, err
	}

	chapters := b.Chapters()
	found, err := rewriteChapters(ctx, chapters, renderer, workerLimit(opts.Workers))
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, Chapters: len(chapters)}
	for i, ids := range found {
		if len(ids) == 0 {
			continue
		}
		report.ChaptersWithAuthors++
		report.Identities += len(ids)
		log.Debug("chapter authors", "chapter", chapters[i].Ref(), "authors", rewrite.Usernames(ids))
	}

	if opts.Ledger != "" {
		if err := recordLedger(ctx, opts.Ledger, store.Run{
			ID:            runID,
			MdbookVersion: pctx.MdbookVersion,
			Renderer:      pctx.Renderer,
		}, chapters, found); err != nil {
			return nil, err
		}
		report.Ledger = opts.Ledger
	}

	log.Info("book preprocessed",
		"chapters", report.Chapters,
		"with_authors", report.ChaptersWithAuthors,
		"identities", report.Identities)
	return report, nil
}

// rewriteChapters rewrites each chapter concurrently and returns the
// identities found, indexed like chapters.
func rewriteChapters(ctx context.Context, chapters []*book.Chapter, renderer *render.Renderer, limit int) ([][]rewrite.Identity, error) {
	found := make([][]rewrite.Identity, len(chapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ch := range chapters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, ids := rewrite.Rewrite(ch.Content)
			fragment, err := renderer.Render(ids)
			if err != nil {
				return fmt.Errorf("chapter %q: %w", ch.Name, err)
			}
			ch.Content = text + fragment
			found[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// recordLedger writes the run to the ledger at path, chapters in book order.
func recordLedger(ctx context.Context, path string, run store.Run, chapters []*book.Chapter, found [][]rewrite.Identity) (err error) {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close ledger: %w", closeErr)
		}
	}()

	if err := st.RecordRun(ctx, run); err != nil {
		return err
	}
	for i, ch := range chapters {
		if err := st.RecordChapter(ctx, run.ID, i, ch.Ref(), rewrite.Usernames(found[i])); err != nil {
			return err
		}
	}
	return nil
}

func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func (p *Preprocessor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Preprocessor) runIDs() RunIDGenerator {
	if p.RunIDs != nil {
		return p.RunIDs
	}
	return UUIDv7Generator{}
}
