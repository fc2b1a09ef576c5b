package posting

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultReason is the match reason carried by postings that have not been
// scored yet. The scorer overwrites it in place.
const DefaultReason = "pending"

// Posting is a single job listing returned by the provider. Only Title,
// Company and URL participate in filtering and dedup; the rest is passed
// through to the caller untouched.
type Posting struct {
	Title       string `json:"title" mapstructure:"title"`
	Company     string `json:"company" mapstructure:"company"`
	Location    string `json:"location" mapstructure:"location"`
	URL         string `json:"job_url" mapstructure:"link"`
	Description string `json:"description" mapstructure:"snippet"`
	MatchScore  int    `json:"match_score"`
	MatchReason string `json:"match_reason"`
}

type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

// SetDefaults stamps the unscored state on a freshly aggregated posting.
func (j *Posting) SetDefaults() {
	j.MatchScore = 0
	j.MatchReason = DefaultReason
	if j.Company == "" {
		j.Company = "Unknown"
	}
}

// Truncate keeps the first n items in arrival order.
func (p *Postings) Truncate(n int) {
	if n >= 0 && len(p.Items) > n {
		p.Items = p.Items[:n]
	}
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups postings by employer for human-readable reports.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range p.Items {
		report[item.Company] = append(report[item.Company], map[string]string{
			"title":        item.Title,
			"url":          item.URL,
			"location":     item.Location,
			"match_score":  fmt.Sprintf("%d", item.MatchScore),
			"match_reason": item.MatchReason,
		})
	}
	return report
}
