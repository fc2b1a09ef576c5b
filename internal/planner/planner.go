// Package planner derives the ordered list of provider queries from the
// candidate's raw role titles. The strategy broadens like an onion: the
// cleaned full title first, then its first two words, and a generic
// fallback query last so the sequence is never empty.
package planner

import (
	"regexp"
	"strings"
)

const (
	// DefaultFallback is appended as the final query when no other
	// fallback is configured.
	DefaultFallback = "Business Analyst"

	// maxTitles bounds how many raw titles are expanded into queries.
	maxTitles = 2
)

var parenthetical = regexp.MustCompile(`\(.*?\)`)

// Plan returns the ordered, de-duplicated query sequence for the given raw
// titles. Titles that are empty after cleaning are skipped. The fallback is
// always the last element.
func Plan(titles []string, fallback string) []string {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}

	queries := make([]string, 0, maxTitles*2+1)
	seen := make(map[string]struct{})

	add := func(q string) {
		if q == "" {
			return
		}
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	if len(titles) > maxTitles {
		titles = titles[:maxTitles]
	}

	for _, title := range titles {
		cleaned := Clean(title)
		add(cleaned)

		words := strings.Fields(cleaned)
		if len(words) >= 2 {
			add(strings.Join(words[:2], " "))
		}
	}

	add(fallback)

	return queries
}

// Clean strips parenthetical qualifiers, replaces slashes with spaces and
// collapses the remaining whitespace.
func Clean(title string) string {
	cleaned := parenthetical.ReplaceAllString(title, "")
	cleaned = strings.ReplaceAll(cleaned, "/", " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
