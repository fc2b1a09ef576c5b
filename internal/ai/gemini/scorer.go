package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/mveldman/jobmatch/internal/ai"
	"github.com/mveldman/jobmatch/internal/logger"
	"github.com/mveldman/jobmatch/internal/posting"
	"github.com/mveldman/jobmatch/internal/utils"
)

const (
	// DefaultCooldown is how long the scorer waits before its single
	// retry after a rate-limit rejection.
	DefaultCooldown = 65 * time.Second

	defaultMaxLogLength = 200
)

// waitFor is swappable in tests so the cooldown does not really sleep.
var waitFor = utils.WaitFor

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Scorer rates batches of postings with a single Gemini request per batch.
type Scorer struct {
	generator contentGenerator
	cooldown  time.Duration
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, cooldown time.Duration, maxLogLength int, log *zap.Logger) *Scorer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		cooldown:  cooldown,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Score sends one batched request covering every posting and parses the
// returned id/score/reason entries. A rate-limit rejection is retried once
// after the cooldown; every other failure degrades to the unscored set.
// Score never returns an error past this boundary.
func (s *Scorer) Score(ctx context.Context, skills []string, batch *posting.Postings) *ai.ScoreSet {
	if batch.Len() == 0 || len(skills) == 0 {
		return ai.Unscored()
	}

	prompt := buildPrompt(skills, batch)

	s.logger.Debug("gemini scoring request",
		zap.Int("batch_size", batch.Len()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if !isRateLimited(err) {
			s.logger.Warn("scoring failed, returning unscored postings", zap.Error(err))
			return ai.Unscored()
		}

		s.logger.Warn("scoring rate limited, waiting for cooldown",
			zap.Duration("cooldown", s.cooldown),
			zap.Error(err),
		)

		if waitErr := waitFor(ctx, s.cooldown); waitErr != nil {
			s.logger.Warn("cooldown interrupted", zap.Error(waitErr))
			return ai.Unscored()
		}

		raw, err = s.generator.GenerateContent(ctx, prompt)
		if err != nil {
			s.logger.Warn("scoring retry failed, returning unscored postings", zap.Error(err))
			return ai.Unscored()
		}
	}

	s.logger.Debug("gemini scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	set, err := parseScores(raw)
	if err != nil {
		s.logger.Warn("parsing scoring response failed, returning unscored postings", zap.Error(err))
		return ai.Unscored()
	}

	return set
}

func buildPrompt(skills []string, batch *posting.Postings) string {
	var b strings.Builder

	b.WriteString("You are a recruiter. Return JSON only.\n\n")
	b.WriteString("Candidate Skills: ")
	b.WriteString(strings.Join(skills, ", "))
	b.WriteString("\nJobs to Evaluate:\n")

	for idx, item := range batch.Items {
		fmt.Fprintf(&b, "ID %d: %s at %s - %s\n", idx, item.Title, item.Company, item.Description)
	}

	b.WriteString("\nTask: Rate each job (0-100) based on relevance to the candidate skills.\n")
	b.WriteString("Provide a SHORT 1-sentence reason per job.\n")
	b.WriteString("RETURN JSON ONLY:\n")
	b.WriteString(`{"scores": [{"id": 0, "score": 95, "reason": "Perfect match for Cloud skills."}]}`)

	return b.String()
}

func parseScores(raw string) (*ai.ScoreSet, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Scores []map[string]any `json:"scores"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	set := &ai.ScoreSet{Scored: true}
	for _, entry := range data.Scores {
		id := coerceInt(entry["id"])
		if id < 0 {
			continue
		}
		set.Scores = append(set.Scores, ai.Score{
			ID:     id,
			Score:  clampScore(coerceInt(entry["score"])),
			Reason: coerceString(entry["reason"]),
		})
	}

	return set, nil
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests ||
			strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED")
	}
	return strings.Contains(err.Error(), "429")
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return -1
		}
		return int(val)
	case int:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return -1
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return -1
		}
		return int(f)
	default:
		return -1
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
