package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/mdbook-github-authors/internal/directive"
	"github.com/roach88/mdbook-github-authors/internal/rewrite"
)

// Result is the outcome of running one case.
type Result struct {
	Name string

	// Pass is true when every expectation held.
	Pass bool

	// Errors describes each failed expectation.
	Errors []string

	Text        string
	Authors     []string
	Occurrences []Occurrence
}

// Occurrence is a removed directive as reported in results and snapshots.
type Occurrence struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Directive string `json:"directive"`
	Payload   string `json:"payload"`
}

// Run rewrites the case input and checks it against the expectations.
// Run never fails; mismatches are reported in Result.Errors.
func Run(c *Case) *Result {
	rr := rewrite.RewriteDetailed(c.Input)

	res := &Result{
		Name:        c.Name,
		Text:        rr.Text,
		Authors:     rewrite.Usernames(rr.Identities),
		Occurrences: make([]Occurrence, 0, len(rr.Occurrences)),
	}
	if res.Authors == nil {
		res.Authors = []string{}
	}
	for _, occ := range rr.Occurrences {
		res.Occurrences = append(res.Occurrences, toOccurrence(occ))
	}

	if c.Expect.Text != nil && res.Text != *c.Expect.Text {
		res.Errors = append(res.Errors,
			fmt.Sprintf("text: got %q, want %q", res.Text, *c.Expect.Text))
	}

	want := c.Expect.Authors
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(res.Authors, want) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("authors: got %q, want %q", res.Authors, want))
	}

	if n := c.Expect.Occurrences; n != nil && len(res.Occurrences) != *n {
		res.Errors = append(res.Errors,
			fmt.Sprintf("occurrences: got %d, want %d", len(res.Occurrences), *n))
	}

	res.Pass = len(res.Errors) == 0
	return res
}

// RunAll runs every case in order.
func RunAll(cases []*Case) []*Result {
	out := make([]*Result, len(cases))
	for i, c := range cases {
		out[i] = Run(c)
	}
	return out
}

func toOccurrence(occ directive.Occurrence) Occurrence {
	return Occurrence{
		Start:     occ.Start,
		End:       occ.End,
		Directive: occ.Payload.Directive(),
		Payload:   occ.Payload.Field(),
	}
}
