// Package book models the JSON exchanged between mdbook and a preprocessor.
//
// mdbook writes a two-element array [context, book] to the preprocessor's
// stdin and expects the (possibly modified) book back on stdout.
package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Context describes the book being built.
type Context struct {
	Root          string          `json:"root"`
	Config        json.RawMessage `json:"config"`
	Renderer      string          `json:"renderer"`
	MdbookVersion string          `json:"mdbook_version"`
}

// Book is the in-memory book mdbook hands to preprocessors.
type Book struct {
	Sections []Item `json:"sections"`

	// NonExhaustive is carried through untouched; mdbook emits it as null.
	NonExhaustive json.RawMessage `json:"__non_exhaustive"`
}

// Chapter is a single page of the book.
type Chapter struct {
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Number      []int    `json:"number"`
	SubItems    []Item   `json:"sub_items"`
	Path        *string  `json:"path"`
	SourcePath  *string  `json:"source_path"`
	ParentNames []string `json:"parent_names"`
}

// MarshalJSON writes empty lists as [] rather than null; mdbook rejects null
// for sub_items and parent_names.
func (c *Chapter) MarshalJSON() ([]byte, error) {
	type plain Chapter
	out := plain(*c)
	if out.SubItems == nil {
		out.SubItems = []Item{}
	}
	if out.ParentNames == nil {
		out.ParentNames = []string{}
	}
	return json.Marshal(out)
}

// ItemKind identifies which variant an Item holds.
type ItemKind int

const (
	KindChapter ItemKind = iota
	KindSeparator
	KindPartTitle
)

// Item is one entry of the book's table of contents: a chapter, a
// separator or a part title.
type Item struct {
	Kind      ItemKind
	Chapter   *Chapter
	PartTitle string
}

// ProtocolError reports input that does not follow the preprocessor protocol.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("preprocessor protocol: %s: %v", e.Message, e.Err)
	}
	return "preprocessor protocol: " + e.Message
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// MarshalJSON encodes the item the way mdbook's serde representation does.
func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case KindChapter:
		if it.Chapter == nil {
			return nil, fmt.Errorf("chapter item without chapter")
		}
		return json.Marshal(map[string]*Chapter{"Chapter": it.Chapter})
	case KindSeparator:
		return json.Marshal("Separator")
	case KindPartTitle:
		return json.Marshal(map[string]string{"PartTitle": it.PartTitle})
	default:
		return nil, fmt.Errorf("unknown book item kind %d", it.Kind)
	}
}

// UnmarshalJSON decodes "Separator", {"Chapter": {...}} or {"PartTitle": "..."}.
func (it *Item) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "Separator" {
			return fmt.Errorf("unknown book item %q", tag)
		}
		*it = Item{Kind: KindSeparator}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("book item: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("book item must have exactly one variant, got %d", len(obj))
	}

	if raw, ok := obj["Chapter"]; ok {
		ch := &Chapter{}
		if err := json.Unmarshal(raw, ch); err != nil {
			return fmt.Errorf("chapter: %w", err)
		}
		*it = Item{Kind: KindChapter, Chapter: ch}
		return nil
	}
	if raw, ok := obj["PartTitle"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return fmt.Errorf("part title: %w", err)
		}
		*it = Item{Kind: KindPartTitle, PartTitle: title}
		return nil
	}
	for k := range obj {
		return fmt.Errorf("unknown book item variant %q", k)
	}
	return nil
}

// Chapters returns every chapter in the book, depth first, in table of
// contents order. The returned pointers alias the book's chapters.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			if it.Kind != KindChapter || it.Chapter == nil {
				continue
			}
			out = append(out, it.Chapter)
			walk(it.Chapter.SubItems)
		}
	}
	walk(b.Sections)
	return out
}

// Ref returns a stable identifier for the chapter: its source path when
// known, otherwise its name.
func (c *Chapter) Ref() string {
	if c.SourcePath != nil && *c.SourcePath != "" {
		return *c.SourcePath
	}
	if c.Path != nil && *c.Path != "" {
		return *c.Path
	}
	return c.Name
}

// ParseInput reads the [context, book] pair mdbook writes to stdin.
func ParseInput(r io.Reader) (*Context, *Book, error) {
	var pair []json.RawMessage
	if err := json.NewDecoder(r).Decode(&pair); err != nil {
		return nil, nil, &ProtocolError{Message: "unable to parse input", Err: err}
	}
	if len(pair) != 2 {
		return nil, nil, &ProtocolError{Message: fmt.Sprintf("expected [context, book], got %d elements", len(pair))}
	}

	ctx := &Context{}
	if err := json.Unmarshal(pair[0], ctx); err != nil {
		return nil, nil, &ProtocolError{Message: "invalid context", Err: err}
	}

	b := &Book{}
	if err := json.Unmarshal(pair[1], b); err != nil {
		return nil, nil, &ProtocolError{Message: "invalid book", Err: err}
	}

	return ctx, b, nil
}

// WriteBook writes b in the form mdbook reads back from stdout.
func WriteBook(w io.Writer, b *Book) error {
	if err := json.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("write book: %w", err)
	}
	return nil
}

// PreprocessorOptions returns the [preprocessor.<name>] table of the book
// configuration, or nil when the book does not configure it.
func (c *Context) PreprocessorOptions(name string) (json.RawMessage, error) {
	if len(c.Config) == 0 || string(c.Config) == "null" {
		return nil, nil
	}

	var cfg struct {
		Preprocessor map[string]json.RawMessage `json:"preprocessor"`
	}
	if err := json.Unmarshal(c.Config, &cfg); err != nil {
		return nil, &ProtocolError{Message: "invalid book config", Err: err}
	}

	raw, ok := cfg.Preprocessor[name]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	return raw, nil
}
