package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/posting"
)

// DefaultBlocklist drops agency/staffing listings and role categories the
// service never matches on. Substring containment, not word boundaries:
// breadth over precision is the intended policy.
var DefaultBlocklist = []string{
	"recruitment", "recruiter", "talent acquisition", "hr manager", "human resources",
	"headhunter", "agency", "staffing", "werving", "selectie",
	"supply chain", "logistics", "warehouse", "operations manager", "floor manager",
	"store manager", "category manager", "facility", "coordinator", "commissioning",
	"quality", "environmental", "audit", "compliance", "legal",
	"sales", "account manager", "marketing", "commercial", "growth", "sme",
	"financial", "accountant", "tax", "treasury", "controller",
	"cleaner", "driver", "mechanic", "nurse", "teacher", "internship", "stage",
}

// DefaultTopK bounds how many postings are handed to the scorer.
const DefaultTopK = 15

type blocklistFilter struct {
	terms []string
}

// NewBlocklist creates a filter that removes postings whose title or
// employer contains a blocked substring.
func NewBlocklist() Filter {
	return &blocklistFilter{}
}

func (f *blocklistFilter) Name() string { return "blocklist" }

func (f *blocklistFilter) IsEnabled() bool { return true }

func (f *blocklistFilter) Validate(cfg *Config) error {
	f.terms = nil
	if cfg == nil {
		return nil
	}
	for _, term := range cfg.Blocklist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		f.terms = append(f.terms, term)
	}
	return nil
}

func (f *blocklistFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if len(f.terms) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]*posting.Posting, 0, initial)
	var dropped []string
	for _, item := range p.Items {
		if f.blocked(item) {
			dropped = append(dropped, item.URL)
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding postings by blocklist",
			zap.Strings("excluded_urls", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *blocklistFilter) blocked(item *posting.Posting) bool {
	title := strings.ToLower(item.Title)
	company := strings.ToLower(item.Company)
	for _, term := range f.terms {
		if strings.Contains(title, term) || strings.Contains(company, term) {
			return true
		}
	}
	return false
}

type limitFilter struct {
	topK int
}

// NewLimit creates a filter that truncates the postings to the configured
// top-K in arrival order. There is no ranking signal yet at this stage.
func NewLimit() Filter {
	return &limitFilter{}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) IsEnabled() bool { return true }

func (f *limitFilter) Validate(cfg *Config) error {
	f.topK = DefaultTopK
	if cfg != nil && cfg.TopK > 0 {
		f.topK = cfg.TopK
	}
	return nil
}

func (f *limitFilter) Apply(_ context.Context, _ Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	p.Truncate(f.topK)
	return p, Step{Initial: initial, Dropped: initial - p.Len(), Left: p.Len()}, nil
}
