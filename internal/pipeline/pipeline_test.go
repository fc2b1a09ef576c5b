package pipeline

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/ai"
	"github.com/mveldman/jobmatch/internal/jooble"
	"github.com/mveldman/jobmatch/internal/posting"
)

type stubProvider struct {
	responses map[string][]*posting.Posting
	calls     []string
}

func (s *stubProvider) Search(_ context.Context, params *jooble.SearchParams) (*posting.Postings, error) {
	s.calls = append(s.calls, params.Keywords)
	if items, ok := s.responses[params.Keywords]; ok {
		return &posting.Postings{Items: items}, nil
	}
	return &posting.Postings{}, nil
}

type stubScorer struct {
	set    *ai.ScoreSet
	called int
	skills []string
	batch  int
}

func (s *stubScorer) Score(_ context.Context, skills []string, batch *posting.Postings) *ai.ScoreSet {
	s.called++
	s.skills = skills
	s.batch = batch.Len()
	if s.set == nil {
		return ai.Unscored()
	}
	return s.set
}

func post(title, url string) *posting.Posting {
	return &posting.Posting{Title: title, Company: "Acme", URL: url, Description: "d"}
}

func newTestPipeline(provider *stubProvider, scorer ai.Scorer, cfg *Config) *Pipeline {
	if cfg == nil {
		cfg = &Config{Location: "Netherlands", FallbackQuery: "Business Analyst"}
	}
	return New(cfg, provider, scorer, nil, zap.NewNop())
}

func TestRunEndToEnd(t *testing.T) {
	// 30 postings across the planned queries with 5 duplicated URLs.
	first := make([]*posting.Posting, 20)
	for i := range first {
		first[i] = post("Data Analyst", fmt.Sprintf("https://x/%d", i))
	}
	second := make([]*posting.Posting, 10)
	for i := range second {
		// first five URLs repeat the initial query's results
		second[i] = post("Data Analyst", fmt.Sprintf("https://x/%d", i+15))
	}

	provider := &stubProvider{responses: map[string][]*posting.Posting{
		"Senior Data Analyst": first,
		"Senior Data":         second,
	}}

	scores := &ai.ScoreSet{Scored: true}
	for i := 0; i < 15; i++ {
		scores.Scores = append(scores.Scores, ai.Score{ID: i, Score: 50 + i, Reason: "ranked"})
	}
	scorer := &stubScorer{set: scores}

	pipe := newTestPipeline(provider, scorer, &Config{
		Location:      "Netherlands",
		FallbackQuery: "Business Analyst",
		MaxResults:    25,
		TopK:          15,
	})

	results, err := pipe.Run(context.Background(), &Signal{
		JobTitles: []string{"Senior Data Analyst (Remote)"},
		Skills:    []string{"SQL", "Python"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.calls) == 0 || provider.calls[0] != "Senior Data Analyst" {
		t.Fatalf("unexpected query plan execution: %v", provider.calls)
	}

	if results.Len() != 15 {
		t.Fatalf("expected top-15 postings, got %d", results.Len())
	}

	if scorer.batch != 15 {
		t.Fatalf("expected scorer to receive the truncated batch, got %d", scorer.batch)
	}

	// arrival order is preserved, not sorted by score
	for i, item := range results.Items {
		if item.URL != fmt.Sprintf("https://x/%d", i) {
			t.Fatalf("arrival order broken at %d: %+v", i, item)
		}
		if item.MatchScore != 50+i || item.MatchReason != "ranked" {
			t.Fatalf("scores not merged at %d: %+v", i, item)
		}
	}
}

func TestRunAppliesBlocklistAndNegativeKeywords(t *testing.T) {
	provider := &stubProvider{responses: map[string][]*posting.Posting{
		"Business Analyst": {
			post("Recruitment Consultant", "https://x/1"),
			post("Data Analyst", "https://x/2"),
			post("Crypto Analyst", "https://x/3"),
		},
	}}

	pipe := newTestPipeline(provider, nil, nil)

	results, err := pipe.Run(context.Background(), &Signal{
		NegativeKeywords: []string{"crypto"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results.Len() != 1 || results.Items[0].URL != "https://x/2" {
		t.Fatalf("expected blocklist and negative keywords applied: %+v", results.Items)
	}
}

func TestRunSkipsScoringWithoutSkills(t *testing.T) {
	provider := &stubProvider{responses: map[string][]*posting.Posting{
		"Business Analyst": {post("Data Analyst", "https://x/1")},
	}}
	scorer := &stubScorer{}

	pipe := newTestPipeline(provider, scorer, nil)

	results, err := pipe.Run(context.Background(), &Signal{JobTitles: nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scorer.called != 0 {
		t.Fatal("scorer must not be called without skills")
	}
	if results.Items[0].MatchScore != 0 || results.Items[0].MatchReason != posting.DefaultReason {
		t.Fatalf("expected default scores: %+v", results.Items[0])
	}
}

func TestRunDegradesWhenScoringFails(t *testing.T) {
	provider := &stubProvider{responses: map[string][]*posting.Posting{
		"Business Analyst": {
			post("Data Analyst", "https://x/1"),
			post("BI Developer", "https://x/2"),
		},
	}}
	scorer := &stubScorer{set: nil} // always degrades

	pipe := newTestPipeline(provider, scorer, nil)

	results, err := pipe.Run(context.Background(), &Signal{Skills: []string{"SQL"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scorer.called != 1 {
		t.Fatalf("expected one scoring attempt, got %d", scorer.called)
	}
	for _, item := range results.Items {
		if item.MatchScore != 0 || item.MatchReason != posting.DefaultReason {
			t.Fatalf("degraded run must keep defaults: %+v", item)
		}
	}
}

func TestRunEmptyProviderIsNotAnError(t *testing.T) {
	provider := &stubProvider{}

	pipe := newTestPipeline(provider, nil, nil)

	results, err := pipe.Run(context.Background(), &Signal{JobTitles: []string{"Ghost Role"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.Len() != 0 {
		t.Fatalf("expected empty result set, got %d", results.Len())
	}
}
