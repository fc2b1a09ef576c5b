package sink

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/posting"
)

func TestAppendAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("opening sink: %v", err)
	}
	defer s.Close()

	if !s.Enabled() {
		t.Fatal("expected sink to be enabled")
	}

	p := &posting.Postings{Items: []*posting.Posting{
		{Title: "Data Analyst", Company: "Acme", Location: "Utrecht", URL: "https://x/1"},
		{Title: "BI Developer", Company: "Globex", Location: "Amsterdam", URL: "https://x/2"},
	}}

	s.Append(context.Background(), "Jane Doe", p)

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var candidate, url string
	err = s.db.QueryRow(`SELECT candidate, job_url FROM results WHERE title = ?`, "Data Analyst").Scan(&candidate, &url)
	if err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if candidate != "Jane Doe" || url != "https://x/1" {
		t.Fatalf("unexpected row: %s %s", candidate, url)
	}
}

func TestDisabledSinkIsSafe(t *testing.T) {
	var s *Sink

	if s.Enabled() {
		t.Fatal("nil sink must report disabled")
	}

	// Appending through a nil sink is a silent no-op.
	s.Append(context.Background(), "Jane Doe", &posting.Postings{
		Items: []*posting.Posting{{Title: "t", URL: "u"}},
	})

	if err := s.Close(); err != nil {
		t.Fatalf("closing nil sink: %v", err)
	}
}

func TestOpenFailsOnBadPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "results.db"), zap.NewNop()); err == nil {
		t.Fatal("expected error for unreachable store")
	}
}
