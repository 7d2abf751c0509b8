package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func casesDir() string {
	return filepath.Join("..", "..", "testdata", "cases")
}

func TestTestCommand_Fixtures(t *testing.T) {
	stdout, _, err := execute(t, &RootOptions{}, "", "test", casesDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ single_author")
	assert.Contains(t, stdout, "✓ escaped")
	assert.Contains(t, stdout, "7 passed, 0 failed, 7 total")
}

func TestTestCommand_Filter(t *testing.T) {
	stdout, _, err := execute(t, &RootOptions{}, "", "test", "--format", "json", "--filter", "e*", casesDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 3, resp.Data.Passed)

	var names []string
	for _, c := range resp.Data.Cases {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"element_spacing", "empty_payload", "escaped"}, names)
}

func TestTestCommand_NoMatches(t *testing.T) {
	stdout, _, err := execute(t, &RootOptions{}, "", "test", "--filter", "zzz*", casesDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No cases matched.")
}

func TestTestCommand_FailingCase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`
name: wrong
description: Expects the directive to survive
input: "{{#author a}}"
expect:
  text: "{{#author a}}"
`), 0644))

	stdout, _, err := execute(t, &RootOptions{}, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 1 case(s) failed")
	assert.Contains(t, stdout, "✗ wrong")
	assert.Contains(t, stdout, "text:")
	assert.Contains(t, stdout, "authors:")
}

func TestTestCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing directory", []string{"test", "/nonexistent/cases"}, "cases directory not found"},
		{"bad filter", []string{"test", "--filter", "[", casesDir()}, "invalid filter pattern"},
		{"missing arg", []string{"test"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, &RootOptions{}, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTestCommand_MalformedCase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\n"), 0644))

	_, _, err := execute(t, &RootOptions{}, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load cases")
}
