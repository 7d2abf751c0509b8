// Package render turns a chapter's author list into the HTML fragment that
// is appended to the chapter.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/mdbook-github-authors/internal/rewrite"
)

//go:embed templates/*.tmpl
var templates embed.FS

// DefaultTemplate is the name of the built-in template.
const DefaultTemplate = "authors.html.tmpl"

// ErrTemplate is wrapped by every template loading or parsing failure.
var ErrTemplate = errors.New("contributors template")

// Options configures a Renderer.
type Options struct {
	// TemplatePath selects a template file. Empty uses the built-in one.
	TemplatePath string

	// Heading is exposed to templates as .Heading.
	Heading string

	// ProfileURL is the prefix used by the profile and avatar functions.
	ProfileURL string
}

// Data is what templates are executed with.
type Data struct {
	// Authors holds the identities with a non-blank username, in order.
	Authors    []rewrite.Identity
	Heading    string
	ProfileURL string
}

// Renderer renders contributor fragments. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// New parses the configured template.
func New(opts Options) (*Renderer, error) {
	name := DefaultTemplate
	var (
		src []byte
		err error
	)
	if opts.TemplatePath != "" {
		name = filepath.Base(opts.TemplatePath)
		src, err = os.ReadFile(opts.TemplatePath)
	} else {
		src, err = templates.ReadFile("templates/" + DefaultTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	funcs := template.FuncMap{
		"profile": func(username string) string {
			return opts.ProfileURL + username
		},
		"avatar": func(username string) string {
			return opts.ProfileURL + username + ".png?size=40"
		},
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrTemplate, name, err)
	}

	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// Render returns the fragment for authors. Blank usernames are left out, as
// they would link to the bare profile URL. A list with no usable username
// renders nothing with the built-in template.
func (r *Renderer) Render(authors []rewrite.Identity) (string, error) {
	linked := slices.DeleteFunc(slices.Clone(authors), func(id rewrite.Identity) bool {
		return strings.TrimSpace(id.Username) == ""
	})

	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, Data{
		Authors:    linked,
		Heading:    r.opts.Heading,
		ProfileURL: r.opts.ProfileURL,
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", r.tmpl.Name(), err)
	}
	return buf.String(), nil
}
