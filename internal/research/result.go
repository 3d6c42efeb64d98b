// Package research turns one question into several web searches and folds the
// scored, deduplicated hits into a single cited brief.
package research

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Result is one validated, scored search hit. URL is its identity.
type Result struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet"`
	Domain    string    `json:"domain"`
	Relevance float64   `json:"relevance"`
	Quality   float64   `json:"quality"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// WeightedScore ranks results: relevance counts for 60%, source quality for 40%.
func (r Result) WeightedScore() float64 {
	return 0.6*r.Relevance + 0.4*r.Quality
}

// MergeResults concatenates lists and drops repeated URLs, keeping the first occurrence.
func MergeResults(lists ...[]Result) []Result {
	seen := make(map[string]bool)
	var merged []Result
	for _, list := range lists {
		for _, r := range list {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			merged = append(merged, r)
		}
	}
	return merged
}

// FormatResults renders results best first as a markdown list of at most limit
// entries. A limit of zero or less keeps them all.
func FormatResults(results []Result, limit int) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	ranked := append([]Result(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WeightedScore() > ranked[j].WeightedScore()
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "### Scored results (%d)\n\n", len(ranked))
	for i, r := range ranked {
		fmt.Fprintf(&sb, "%d. **%s** (%s, score %.2f)\n   %s\n", i+1, r.Title, r.Domain, r.WeightedScore(), r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
