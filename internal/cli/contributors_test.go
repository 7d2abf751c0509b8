package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mdbook-github-authors/internal/preprocess"
	"github.com/roach88/mdbook-github-authors/internal/store"
)

// preprocessIntoLedger runs the fixture book through the root command with
// --db and returns the ledger path.
func preprocessIntoLedger(t *testing.T, runID string) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "authors.db")
	opts := &RootOptions{RunIDs: preprocess.NewFixedGenerator(runID)}
	_, _, err := execute(t, opts, string(fixtureBook(t)), "--db", db)
	require.NoError(t, err)
	return db
}

func TestContributors_Text(t *testing.T) {
	db := preprocessIntoLedger(t, "run-1")

	stdout, _, err := execute(t, &RootOptions{}, "", "contributors", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Run run-1")
	assert.Contains(t, stdout, "USERNAME")
	assert.Regexp(t, `nerdai\s+2\s+2`, stdout)
	assert.Regexp(t, `emersodb\s+1\s+1`, stdout)
}

func TestContributors_JSON(t *testing.T) {
	db := preprocessIntoLedger(t, "run-1")

	stdout, _, err := execute(t, &RootOptions{}, "", "contributors", "--format", "json", "--db", db, "--run", "run-1")
	require.NoError(t, err)

	var resp struct {
		Status  string             `json:"status"`
		Data    ContributorsResult `json:"data"`
		TraceID string             `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "run-1", resp.TraceID)
	assert.Equal(t, []store.Contributor{
		{Username: "nerdai", Key: "nerdai", Mentions: 2, Chapters: 2},
		{Username: "emersodb", Key: "emersodb", Mentions: 1, Chapters: 1},
	}, resp.Data.Contributors)
}

func TestContributors_UnknownRun(t *testing.T) {
	db := preprocessIntoLedger(t, "run-1")

	stdout, _, err := execute(t, &RootOptions{}, "", "contributors", "--db", db, "--run", "other")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No authors recorded.")
}

func TestContributors_Errors(t *testing.T) {
	t.Run("missing db flag", func(t *testing.T) {
		_, _, err := execute(t, &RootOptions{}, "", "contributors")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "--db is required")
	})

	t.Run("missing ledger", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "nope.db")
		_, _, err := execute(t, &RootOptions{}, "", "contributors", "--db", db)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "ledger not found")
	})

	t.Run("empty ledger", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "empty.db")
		st, err := store.Open(db)
		require.NoError(t, err)
		require.NoError(t, st.Close())

		_, _, err = execute(t, &RootOptions{}, "", "contributors", "--db", db)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.ErrorIs(t, err, store.ErrNoRuns)
	})
}
