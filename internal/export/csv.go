// Package export renders a result list as delimited text.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mveldman/jobmatch/internal/posting"
)

var header = []string{"title", "company", "location", "job_url", "description", "match_score", "match_reason"}

// WriteCSV renders the postings to w, one row per posting plus a header.
func WriteCSV(w io.Writer, p *posting.Postings) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, item := range p.Items {
		row := []string{
			item.Title,
			item.Company,
			item.Location,
			item.URL,
			item.Description,
			strconv.Itoa(item.MatchScore),
			item.MatchReason,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
