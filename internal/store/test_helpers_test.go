package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// recordTestRun records a run with fixed metadata.
func recordTestRun(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.RecordRun(context.Background(), Run{ID: id, MdbookVersion: "0.4.40", Renderer: "html"})
	if err != nil {
		t.Fatalf("RecordRun(%q) failed: %v", id, err)
	}
}
