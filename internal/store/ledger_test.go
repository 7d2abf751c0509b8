package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"nerdai", "nerdai"},
		{"NerdAI", "nerdai"},
		{" baz", "baz"},
		// Decomposed e + combining acute composes to é.
		{"Jose\u0301", "jos\u00e9"},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLatestRun_Empty(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LatestRun(context.Background())
	if !errors.Is(err, ErrNoRuns) {
		t.Fatalf("LatestRun() error = %v, want ErrNoRuns", err)
	}
}

func TestLatestRun_ReturnsNewest(t *testing.T) {
	s := createTestStore(t)
	recordTestRun(t, s, "run-1")
	recordTestRun(t, s, "run-2")
	recordTestRun(t, s, "run-1") // duplicate is ignored

	got, err := s.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if got != "run-2" {
		t.Errorf("LatestRun() = %q, want run-2", got)
	}
}

func TestRecordChapter_RequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.RecordChapter(context.Background(), "missing", 0, "intro.md", []string{"a"})
	if err == nil {
		t.Fatal("expected foreign key error for unknown run")
	}
}

func TestRecordChapter_EmptyIsNoop(t *testing.T) {
	s := createTestStore(t)

	if err := s.RecordChapter(context.Background(), "missing", 0, "intro.md", nil); err != nil {
		t.Fatalf("RecordChapter(nil) failed: %v", err)
	}
}

func TestMentions_BookOrder(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	recordTestRun(t, s, "run-1")

	if err := s.RecordChapter(ctx, "run-1", 1, "b.md", []string{"y", "z"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordChapter(ctx, "run-1", 0, "a.md", []string{"x"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Mentions(ctx, "run-1")
	if err != nil {
		t.Fatalf("Mentions() failed: %v", err)
	}

	want := []Mention{
		{ChapterIndex: 0, Chapter: "a.md", Position: 0, Username: "x"},
		{ChapterIndex: 1, Chapter: "b.md", Position: 0, Username: "y"},
		{ChapterIndex: 1, Chapter: "b.md", Position: 1, Username: "z"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mentions() mismatch (-want +got):\n%s", diff)
	}
}

func TestContributors_GroupsByKey(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	recordTestRun(t, s, "run-1")
	recordTestRun(t, s, "run-2")

	chapters := []struct {
		name  string
		users []string
	}{
		{"chapter_1/index.md", []string{"nerdai"}},
		{"chapter_1/sub_chapter_2.md", []string{"NerdAI", "emersodb"}},
		{"chapter_2.md", []string{"emersodb", " zed", "nerdai"}},
	}
	for i, ch := range chapters {
		if err := s.RecordChapter(ctx, "run-1", i, ch.name, ch.users); err != nil {
			t.Fatalf("RecordChapter(%s) failed: %v", ch.name, err)
		}
	}
	// Another run must not leak into run-1's summary.
	if err := s.RecordChapter(ctx, "run-2", 0, "other.md", []string{"zed"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Contributors(ctx, "run-1")
	if err != nil {
		t.Fatalf("Contributors() failed: %v", err)
	}

	want := []Contributor{
		{Username: "NerdAI", Key: "nerdai", Mentions: 3, Chapters: 3},
		{Username: "emersodb", Key: "emersodb", Mentions: 2, Chapters: 2},
		{Username: " zed", Key: "zed", Mentions: 1, Chapters: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Contributors() mismatch (-want +got):\n%s", diff)
	}
}

func TestContributors_UnknownRunIsEmpty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Contributors(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Contributors() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Contributors() = %#v, want empty non-nil slice", got)
	}
}
