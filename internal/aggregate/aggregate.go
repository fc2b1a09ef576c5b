// Package aggregate merges provider results across the planned queries,
// deduplicating by canonical URL and stopping early once enough unique
// postings are collected.
package aggregate

import (
	"context"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/jooble"
	"github.com/mveldman/jobmatch/internal/posting"
)

// DefaultCeiling bounds how many unique postings a single run collects,
// independent of how many queries remain.
const DefaultCeiling = 25

// Searcher is the provider contract consumed by the aggregator.
type Searcher interface {
	Search(ctx context.Context, params *jooble.SearchParams) (*posting.Postings, error)
}

type Aggregator struct {
	provider Searcher
	location string
	ceiling  int
	logger   *zap.Logger
}

func New(provider Searcher, location string, ceiling int, logger *zap.Logger) *Aggregator {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Aggregator{
		provider: provider,
		location: location,
		ceiling:  ceiling,
		logger:   logger,
	}
}

// Collect issues the queries in order and accumulates unique postings.
// Provider errors are logged and skipped; a failed query counts as zero
// results. Collect never fails: worst case is an empty set.
func (a *Aggregator) Collect(ctx context.Context, queries []string) *posting.Postings {
	results := &posting.Postings{}
	seen := make(map[string]struct{})

	for _, query := range queries {
		if results.Len() >= a.ceiling {
			a.logger.Debug("result ceiling reached, skipping remaining queries",
				zap.Int("ceiling", a.ceiling),
			)
			break
		}

		found, err := a.provider.Search(ctx, &jooble.SearchParams{
			Keywords: query,
			Location: a.location,
			Page:     1,
		})
		if err != nil {
			a.logger.Warn("provider query failed",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		added := 0
		for _, item := range found.Items {
			if item.URL == "" {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			item.SetDefaults()
			results.Items = append(results.Items, item)
			added++
		}

		a.logger.Info("provider query done",
			zap.String("query", query),
			zap.Int("returned", found.Len()),
			zap.Int("added", added),
			zap.Int("total", results.Len()),
		)
	}

	return results
}
