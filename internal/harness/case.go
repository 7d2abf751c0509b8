package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Case is one conformance case.
type Case struct {
	// Name uniquely identifies the case and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the case checks.
	Description string `yaml:"description"`

	// Input is the document handed to the rewriter.
	Input string `yaml:"input"`

	Expect Expect `yaml:"expect"`
}

// Expect holds the expected rewrite outcome.
type Expect struct {
	// Text is the rewritten document. Required, since "" is a valid
	// expectation.
	Text *string `yaml:"text"`

	// Authors lists the expected usernames in order. Omitted means none.
	Authors []string `yaml:"authors,omitempty"`

	// Occurrences, if set, is the expected number of directives removed.
	Occurrences *int `yaml:"occurrences,omitempty"`
}

// LoadCase reads and parses a case file. Unknown fields are rejected so that
// typos in fixtures fail loudly.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var c Case
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}

	if err := validateCase(&c); err != nil {
		return nil, fmt.Errorf("invalid case %s: %w", path, err)
	}
	return &c, nil
}

// LoadDir loads every *.yaml and *.yml case in dir, sorted by file name.
// Case names must be unique within the directory.
func LoadDir(dir string) ([]*Case, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("failed to read case directory: %w", err)
		}
		return nil, fmt.Errorf("no case files in %s", dir)
	}

	cases := make([]*Case, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		c, err := LoadCase(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("duplicate case name %q in %s and %s", c.Name, prev, path)
		}
		seen[c.Name] = path
		cases = append(cases, c)
	}
	return cases, nil
}

// validateCase checks that required fields are present.
func validateCase(c *Case) error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Description == "" {
		return errors.New("description is required")
	}
	if c.Expect.Text == nil {
		return errors.New("expect.text is required")
	}
	if c.Expect.Occurrences != nil && *c.Expect.Occurrences < 0 {
		return errors.New("expect.occurrences must not be negative")
	}
	return nil
}
