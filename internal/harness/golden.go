package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file form of a result.
type Snapshot struct {
	Name        string       `json:"name"`
	Text        string       `json:"text"`
	Authors     []string     `json:"authors"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Snapshot returns the result's golden-file form.
func (r *Result) Snapshot() Snapshot {
	return Snapshot{
		Name:        r.Name,
		Text:        r.Text,
		Authors:     r.Authors,
		Occurrences: r.Occurrences,
	}
}

// MarshalSnapshot encodes s as indented JSON with a trailing newline.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs the case and compares its snapshot against
// testdata/golden/<name>.golden. Expectation failures are reported through t
// as well.
func RunWithGolden(t *testing.T, c *Case) *Result {
	t.Helper()

	res := Run(c)
	for _, msg := range res.Errors {
		t.Errorf("case %s: %s", c.Name, msg)
	}

	data, err := MarshalSnapshot(res.Snapshot())
	if err != nil {
		t.Fatalf("case %s: marshal snapshot: %v", c.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, c.Name, data)
	return res
}
