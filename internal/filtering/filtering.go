// Package filtering applies the relevance policy to aggregated postings as
// a sequence of named steps.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/posting"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	// Blocklist holds lowercase substrings; a posting whose title or
	// employer contains any of them is dropped.
	Blocklist []string
	// TopK truncates the surviving postings in arrival order.
	TopK int
}

// Run executes the supplied filters sequentially, returning the resulting
// posting list.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, p *posting.Postings) (*posting.Postings, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next
	}

	return p, nil
}
