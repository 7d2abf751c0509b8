package directive

import (
	"iter"
	"regexp"
	"strings"
	"sync"
)

// Directive names understood by the scanner. Matching is case-sensitive.
const (
	NameAuthor  = "author"
	NameAuthors = "authors"
)

// patternSource is the directive grammar.
//
// The first alternative matches an escaped directive (backslash, then
// everything up to the last "}}" on the line). The second captures the
// directive name (group 1) and its payload (group 2). Go's regexp prefers
// the leftmost match and, at equal positions, the first alternative.
const patternSource = `\\\{\{#.*\}\}` + // escaped directive
	`|` +
	`\{\{` + space + `*` + // opening braces and optional whitespace
	`#([a-zA-Z0-9_]+)` + // directive name
	space + `+` + // separator
	`([^}]+)` + // payload
	`\}\}` // closing braces

// space matches Unicode White_Space, the set strings.TrimSpace removes.
// Go's \s alone is ASCII-only.
const space = `[\s\v\x{85}\p{Z}]`

// Pattern returns the compiled directive pattern. The pattern is compiled on
// the first call and the same value is returned to every caller after that.
var Pattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(patternSource)
})

// Payload is the parsed content of a directive. It is either SingleIdentity
// or MultipleIdentities; no other implementations exist.
type Payload interface {
	// Directive returns the name of the directive that carried the payload.
	Directive() string

	// Field returns the trimmed payload text.
	Field() string

	payload()
}

// SingleIdentity is the trimmed payload of {{#author ...}}.
type SingleIdentity string

// MultipleIdentities is the trimmed, still comma-separated payload of
// {{#authors ...}}.
type MultipleIdentities string

func (SingleIdentity) Directive() string     { return NameAuthor }
func (MultipleIdentities) Directive() string { return NameAuthors }

func (s SingleIdentity) Field() string     { return string(s) }
func (m MultipleIdentities) Field() string { return string(m) }

func (SingleIdentity) payload()     {}
func (MultipleIdentities) payload() {}

// Occurrence is one recognized directive.
type Occurrence struct {
	// Start and End delimit the directive as a half-open byte range.
	Start int
	End   int

	Payload Payload

	// Raw is text[Start:End].
	Raw string
}

// Len returns the number of bytes the directive spans.
func (o Occurrence) Len() int {
	return o.End - o.Start
}

// Scan returns the directives found in text, in order of appearance.
//
// Matching is lazy: each step of the iteration runs one pattern match.
// Every range over the returned sequence starts a new pass from the
// beginning of text.
func Scan(text string) iter.Seq[Occurrence] {
	return func(yield func(Occurrence) bool) {
		re := Pattern()
		pos := 0
		for pos < len(text) {
			loc := re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			base := pos
			// The pattern cannot match the empty string, so this always advances.
			pos = base + loc[1]

			occ, ok := resolve(text, base, loc)
			if !ok {
				continue
			}
			if !yield(occ) {
				return
			}
		}
	}
}

// All collects every occurrence in text.
func All(text string) []Occurrence {
	var out []Occurrence
	for occ := range Scan(text) {
		out = append(out, occ)
	}
	return out
}

// resolve turns one structural match into an Occurrence. loc holds submatch
// indexes relative to text[base:]. Escaped directives, unknown names and empty
// payloads are rejected.
func resolve(text string, base int, loc []int) (Occurrence, bool) {
	if loc[2] < 0 || loc[4] < 0 {
		return Occurrence{}, false
	}

	name := text[base+loc[2] : base+loc[3]]
	field := strings.TrimSpace(text[base+loc[4] : base+loc[5]])
	if field == "" {
		return Occurrence{}, false
	}

	var p Payload
	switch name {
	case NameAuthor:
		p = SingleIdentity(field)
	case NameAuthors:
		p = MultipleIdentities(field)
	default:
		return Occurrence{}, false
	}

	start, end := base+loc[0], base+loc[1]
	return Occurrence{
		Start:   start,
		End:     end,
		Payload: p,
		Raw:     text[start:end],
	}, true
}
