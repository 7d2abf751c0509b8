package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoRuns is returned by LatestRun when the ledger is empty.
var ErrNoRuns = errors.New("ledger has no runs")

// Contributor summarizes one author across a run.
type Contributor struct {
	// Username is the first spelling in byte order among those grouped
	// under Key.
	Username string `json:"username"`
	Key      string `json:"key"`
	Mentions int    `json:"mentions"`
	Chapters int    `json:"chapters"`
}

// Mention is one stored identity.
type Mention struct {
	ChapterIndex int    `json:"chapter_index"`
	Chapter      string `json:"chapter"`
	Position     int    `json:"position"`
	Username     string `json:"username"`
}

// LatestRun returns the ID of the most recently recorded run.
func (s *Store) LatestRun(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY seq DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// Contributors summarizes the authors of a run, most mentioned first.
// Ties are broken by key in byte order. Returns an empty slice (not nil)
// when the run has no mentions.
func (s *Store) Contributors(ctx context.Context, runID string) ([]Contributor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT MIN(username), username_key, COUNT(*), COUNT(DISTINCT chapter_index)
		FROM mentions
		WHERE run_id = ?
		GROUP BY username_key
		ORDER BY COUNT(*) DESC, username_key COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query contributors: %w", err)
	}
	defer rows.Close()

	out := []Contributor{}
	for rows.Next() {
		var c Contributor
		if err := rows.Scan(&c.Username, &c.Key, &c.Mentions, &c.Chapters); err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors: %w", err)
	}
	return out, nil
}

// Mentions returns every mention of a run in book order.
func (s *Store) Mentions(ctx context.Context, runID string) ([]Mention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chapter_index, chapter, position, username
		FROM mentions
		WHERE run_id = ?
		ORDER BY chapter_index ASC, position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	out := []Mention{}
	for rows.Next() {
		var m Mention
		if err := rows.Scan(&m.ChapterIndex, &m.Chapter, &m.Position, &m.Username); err != nil {
			return nil, fmt.Errorf("scan mention: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mentions: %w", err)
	}
	return out, nil
}
