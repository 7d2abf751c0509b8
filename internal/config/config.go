// Package config reads the preprocessor's options from the book
// configuration and validates them against an embedded CUE schema.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Defaults for options the book does not set.
const (
	DefaultHeading    = "Contributors:"
	DefaultProfileURL = "https://github.com/"
)

// Options configures the preprocessor.
type Options struct {
	// Template is a path to a custom contributors template. Empty selects
	// the built-in template.
	Template string

	// Heading is shown above the contributor list.
	Heading string

	// ProfileURL is prefixed to each username to form profile links.
	ProfileURL string

	// Workers bounds how many chapters are processed at once. Zero means
	// one per available CPU.
	Workers int

	// Ledger is a path to a SQLite contributor ledger. Empty disables it.
	Ledger string

	// Renderers mirrors mdbook's own renderers key, when set.
	Renderers []string
}

// Defaults returns the options used when the book configures nothing.
func Defaults() Options {
	return Options{
		Heading:    DefaultHeading,
		ProfileURL: DefaultProfileURL,
	}
}

// Error describes an invalid option.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "invalid preprocessor options: " + e.Message
	}
	return fmt.Sprintf("invalid preprocessor option %q: %s", e.Field, e.Message)
}

// decoded mirrors the schema; pointers record which keys were present.
type decoded struct {
	Template   *string  `json:"template"`
	Heading    *string  `json:"heading"`
	ProfileURL *string  `json:"profile-url"`
	Workers    *int     `json:"workers"`
	Ledger     *string  `json:"ledger"`
	Renderers  []string `json:"renderers"`
}

// Load validates the raw [preprocessor.<name>] table and merges it over the
// defaults. A nil or empty table yields Defaults().
func Load(raw json.RawMessage) (Options, error) {
	opts := Defaults()
	if len(raw) == 0 {
		return opts, nil
	}

	ctx := cuecontext.New()
	def := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Options"))
	if err := def.Err(); err != nil {
		return Options{}, fmt.Errorf("compile options schema: %w", err)
	}

	val := ctx.CompileBytes(raw, cue.Filename("book.toml"))
	if err := val.Err(); err != nil {
		return Options{}, toError(err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Options{}, toError(err)
	}

	var d decoded
	if err := unified.Decode(&d); err != nil {
		return Options{}, toError(err)
	}

	if d.Template != nil {
		opts.Template = *d.Template
	}
	if d.Heading != nil {
		opts.Heading = *d.Heading
	}
	if d.ProfileURL != nil {
		opts.ProfileURL = *d.ProfileURL
	}
	if d.Workers != nil {
		opts.Workers = *d.Workers
	}
	if d.Ledger != nil {
		opts.Ledger = *d.Ledger
	}
	opts.Renderers = d.Renderers

	return opts, nil
}

// Resolve makes relative file options absolute with respect to root, the
// book's root directory.
func (o Options) Resolve(root string) Options {
	o.Template = resolvePath(root, o.Template)
	o.Ledger = resolvePath(root, o.Ledger)
	return o
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// toError converts the first CUE error into an *Error naming the offending key.
func toError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	path := first.Path()
	// Paths start at the #Options definition.
	if len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	return &Error{
		Field:   strings.Join(path, "."),
		Message: first.Error(),
	}
}
