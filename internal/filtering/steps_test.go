package filtering

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/posting"
)

func postings(items ...*posting.Posting) *posting.Postings {
	return &posting.Postings{Items: items}
}

func TestBlocklistMatchesTitleAndCompany(t *testing.T) {
	cfg := &Config{Blocklist: []string{"recruitment", "agency"}}
	filter := NewBlocklist()
	if err := filter.Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := postings(
		&posting.Posting{Title: "Senior Recruitment Consultant", Company: "Acme", URL: "1"},
		&posting.Posting{Title: "Data Analyst", Company: "Hire Agency BV", URL: "2"},
		&posting.Posting{Title: "Data Analyst", Company: "Acme", URL: "3"},
	)

	out, step, err := filter.Apply(context.Background(), Deps{Logger: zap.NewNop()}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Len() != 1 || out.Items[0].URL != "3" {
		t.Fatalf("unexpected survivors: %+v", out.Items)
	}
	if step.Initial != 3 || step.Dropped != 2 || step.Left != 1 {
		t.Fatalf("unexpected step stats: %+v", step)
	}
}

func TestBlocklistIsSubstringNotWordBoundary(t *testing.T) {
	// "sme" matching inside larger words is the intended breadth-over-
	// precision policy.
	cfg := &Config{Blocklist: []string{"sme"}}
	filter := NewBlocklist()
	if err := filter.Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := postings(&posting.Posting{Title: "Risk Assesment Lead", Company: "Transmedia", URL: "1"})

	out, _, err := filter.Apply(context.Background(), Deps{}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected substring hit inside a word, got %+v", out.Items)
	}
}

func TestBlocklistIdempotent(t *testing.T) {
	cfg := &Config{Blocklist: []string{"agency"}}
	filter := NewBlocklist()
	if err := filter.Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := postings(
		&posting.Posting{Title: "Data Analyst", Company: "Staffing Agency", URL: "1"},
		&posting.Posting{Title: "Data Analyst", Company: "Acme", URL: "2"},
	)

	once, _, err := filter.Apply(context.Background(), Deps{}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	twice, step, err := filter.Apply(context.Background(), Deps{}, once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Dropped != 0 || twice.Len() != once.Len() {
		t.Fatalf("second pass removed postings: %+v", step)
	}
}

func TestLimitTruncatesInArrivalOrder(t *testing.T) {
	cfg := &Config{TopK: 2}
	filter := NewLimit()
	if err := filter.Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := postings(
		&posting.Posting{URL: "1"},
		&posting.Posting{URL: "2"},
		&posting.Posting{URL: "3"},
	)

	out, step, err := filter.Apply(context.Background(), Deps{}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Len() != 2 || out.Items[0].URL != "1" || out.Items[1].URL != "2" {
		t.Fatalf("unexpected truncation: %+v", out.Items)
	}
	if step.Dropped != 1 {
		t.Fatalf("unexpected step stats: %+v", step)
	}
}

func TestRunAppliesStepsInOrder(t *testing.T) {
	cfg := &Config{Blocklist: []string{"agency"}, TopK: 1}

	p := postings(
		&posting.Posting{Title: "Data Analyst", Company: "Agency One", URL: "1"},
		&posting.Posting{Title: "Data Analyst", Company: "Acme", URL: "2"},
		&posting.Posting{Title: "BI Developer", Company: "Globex", URL: "3"},
	)

	steps := []Filter{NewBlocklist(), NewLimit()}

	out, err := Run(context.Background(), cfg, Deps{Logger: zap.NewNop()}, steps, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Len() != 1 || out.Items[0].URL != "2" {
		t.Fatalf("expected blocklist before limit, got %+v", out.Items)
	}
}
