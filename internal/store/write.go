package store

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Run identifies one preprocessing run.
type Run struct {
	ID            string
	MdbookVersion string
	Renderer      string
}

// Key returns the grouping key for a username: trimmed, NFC-normalized and
// case-folded. The stored username itself is never altered.
func Key(username string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(username)))
}

// RecordRun inserts a run record. Recording the same run ID twice is a no-op.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, mdbook_version, renderer)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.MdbookVersion, run.Renderer)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecordChapter stores the usernames found in one chapter, in order.
// chapterIndex is the chapter's position in the book and keeps chapters with
// identical names apart. The run must already be recorded.
func (s *Store) RecordChapter(ctx context.Context, runID string, chapterIndex int, chapter string, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record chapter: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mentions (run_id, chapter_index, chapter, position, username, username_key)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("record chapter: prepare: %w", err)
	}
	defer stmt.Close()

	for pos, name := range usernames {
		if _, err := stmt.ExecContext(ctx, runID, chapterIndex, chapter, pos, name, Key(name)); err != nil {
			return fmt.Errorf("record chapter %q: %w", chapter, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record chapter: commit: %w", err)
	}
	return nil
}
