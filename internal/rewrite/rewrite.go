// Package rewrite removes author directives from chapter text and collects
// the usernames they reference.
package rewrite

import (
	"strings"

	"github.com/roach88/mdbook-github-authors/internal/directive"
)

// Identity is one author reference. No validation is applied to Username.
type Identity struct {
	Username string `json:"username" yaml:"username"`
}

// Result is the outcome of rewriting one document.
type Result struct {
	// Text is the input with every directive span removed.
	Text string

	// Identities lists authors in document order, then left to right
	// within an {{#authors}} field.
	Identities []Identity

	// Occurrences are the directives that were removed.
	Occurrences []directive.Occurrence
}

// Rewrite removes every author directive from text and returns the remaining
// text together with the referenced identities. Text without directives is
// returned unchanged with a nil identity list.
func Rewrite(text string) (string, []Identity) {
	r := RewriteDetailed(text)
	return r.Text, r.Identities
}

// RewriteDetailed is Rewrite but also reports the removed occurrences.
func RewriteDetailed(text string) Result {
	var (
		b      strings.Builder
		cursor int
		res    Result
	)

	for occ := range directive.Scan(text) {
		if res.Occurrences == nil {
			b.Grow(len(text))
		}
		b.WriteString(text[cursor:occ.Start])
		cursor = occ.End

		res.Identities = append(res.Identities, Expand(occ.Payload)...)
		res.Occurrences = append(res.Occurrences, occ)
	}

	if res.Occurrences == nil {
		res.Text = text
		return res
	}

	b.WriteString(text[cursor:])
	res.Text = b.String()
	return res
}

// Expand converts a directive payload into identities.
//
// A MultipleIdentities field is split on "," only; elements are not trimmed
// individually, so "a, b" yields "a" and " b".
func Expand(p directive.Payload) []Identity {
	switch v := p.(type) {
	case directive.SingleIdentity:
		return []Identity{{Username: string(v)}}
	case directive.MultipleIdentities:
		parts := strings.Split(string(v), ",")
		out := make([]Identity, len(parts))
		for i, name := range parts {
			out[i] = Identity{Username: name}
		}
		return out
	default:
		return nil
	}
}

// Usernames returns the Username of each identity, in order.
func Usernames(ids []Identity) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Username
	}
	return out
}
