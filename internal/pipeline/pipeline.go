// Package pipeline runs one candidate-to-job matching pass: query
// planning, provider retrieval with dedup, relevance filtering, batched
// AI scoring and best-effort persistence. A run is request scoped and
// keeps no state behind.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/aggregate"
	"github.com/mveldman/jobmatch/internal/ai"
	"github.com/mveldman/jobmatch/internal/filtering"
	"github.com/mveldman/jobmatch/internal/planner"
	"github.com/mveldman/jobmatch/internal/posting"
	"github.com/mveldman/jobmatch/internal/sink"
)

// Signal is the candidate search signal accepted by a run. Every field
// except JobTitles may be absent or empty.
type Signal struct {
	JobTitles        []string `json:"job_titles"`
	RealName         string   `json:"real_name"`
	Skills           []string `json:"skills"`
	NegativeKeywords []string `json:"negative_keywords"`
}

// Config carries the per-process tuning of a pipeline.
type Config struct {
	// Location is the fixed provider region constraint.
	Location string
	// FallbackQuery terminates every planned query sequence.
	FallbackQuery string
	// MaxResults bounds the aggregated unique-posting count.
	MaxResults int
	// TopK bounds how many filtered postings reach the scorer.
	TopK int
	// Blocklist extends the built-in relevance blocklist.
	Blocklist []string
}

type Pipeline struct {
	cfg    *Config
	agg    *aggregate.Aggregator
	scorer ai.Scorer
	sink   *sink.Sink
	logger *zap.Logger
}

// New wires a pipeline from its collaborators. scorer may be nil when AI
// scoring is disabled; snk may be nil when persistence is disabled.
func New(cfg *Config, provider aggregate.Searcher, scorer ai.Scorer, snk *sink.Sink, logger *zap.Logger) *Pipeline {
	blocklist := cfg.Blocklist
	if len(blocklist) == 0 {
		blocklist = filtering.DefaultBlocklist
	}
	cfg.Blocklist = blocklist

	return &Pipeline{
		cfg:    cfg,
		agg:    aggregate.New(provider, cfg.Location, cfg.MaxResults, logger),
		scorer: scorer,
		sink:   snk,
		logger: logger,
	}
}

// Run executes the whole pass and returns the final postings in arrival
// order. Scores are merged in place, never re-sorted. Partial failures
// (provider queries, scoring, persistence) degrade instead of aborting;
// the only returned errors come from filter validation.
func (p *Pipeline) Run(ctx context.Context, signal *Signal) (*posting.Postings, error) {
	queries := planner.Plan(signal.JobTitles, p.cfg.FallbackQuery)

	p.logger.Info("search plan ready",
		zap.Strings("queries", queries),
		zap.String("location", p.cfg.Location),
	)

	results := p.agg.Collect(ctx, queries)

	filterCfg := &filtering.Config{
		Blocklist: append(append([]string{}, p.cfg.Blocklist...), signal.NegativeKeywords...),
		TopK:      p.cfg.TopK,
	}

	steps := []filtering.Filter{
		filtering.NewBlocklist(),
		filtering.NewLimit(),
	}

	final, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: p.logger}, steps, results)
	if err != nil {
		return nil, err
	}

	if p.scorer != nil && len(signal.Skills) > 0 && final.Len() > 0 {
		set := p.scorer.Score(ctx, signal.Skills, final)
		set.Apply(final)

		p.logger.Info("scoring finished",
			zap.Bool("scored", set != nil && set.Scored),
			zap.Int("postings", final.Len()),
		)
	}

	candidate := signal.RealName
	if candidate == "" {
		candidate = "Unknown"
	}
	p.sink.Append(ctx, candidate, final)

	return final, nil
}
