package ai

import (
	"context"

	"github.com/mveldman/jobmatch/internal/posting"
)

// Score is one entry returned by the model. ID is the position of the
// posting in the scored batch, not a content key.
type Score struct {
	ID     int
	Score  int
	Reason string
}

// ScoreSet is the outcome of a scoring attempt. Scored is false when the
// stage degraded (rate limited twice, malformed response, service error);
// the postings then keep their defaults.
type ScoreSet struct {
	Scored bool
	Scores []Score
}

// Unscored returns the degraded variant.
func Unscored() *ScoreSet {
	return &ScoreSet{}
}

// Apply merges the scores into the batch in place by positional id.
// Entries whose id falls outside the batch are ignored; postings never
// mentioned keep their default score and reason.
func (s *ScoreSet) Apply(batch *posting.Postings) {
	if s == nil || !s.Scored {
		return
	}
	for _, entry := range s.Scores {
		if entry.ID < 0 || entry.ID >= batch.Len() {
			continue
		}
		item := batch.Items[entry.ID]
		item.MatchScore = entry.Score
		item.MatchReason = entry.Reason
	}
}

// Scorer rates a batch of postings against the candidate's skills. It
// never fails: a degraded ScoreSet stands in for every error condition.
type Scorer interface {
	Score(ctx context.Context, skills []string, batch *posting.Postings) *ScoreSet
}
