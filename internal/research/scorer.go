package research

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	qualityTermBonus = 0.05
	expertTermBonus  = 0.08
	spamTermPenalty  = 0.15
	hardDataBonus    = 0.1

	minQuality = 0.1
	maxQuality = 1.0
)

// percentages, dollar amounts and ISO dates
var hardDataPattern = regexp.MustCompile(`\d+\.?\d*%|\$\d+|\d{4}-\d{2}-\d{2}`)

// DomainOf returns the lower-cased host of rawURL without a leading "www.".
// Unparseable or host-less URLs give "unknown".
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// QualityScore estimates how trustworthy a hit is from its domain and wording.
// The result is always within [0.1, 1.0].
func QualityScore(rawURL, title, snippet string) float64 {
	score := DomainWeight(DomainOf(rawURL))
	content := strings.ToLower(title + " " + snippet)

	score += float64(countTerms(content, qualityTerms)) * qualityTermBonus
	score += float64(countTerms(content, expertTerms)) * expertTermBonus
	score -= float64(countTerms(content, spamTerms)) * spamTermPenalty

	if hardDataPattern.MatchString(content) {
		score += hardDataBonus
	}

	return clamp(score, minQuality, maxQuality)
}

// countTerms reports how many distinct terms occur in content.
func countTerms(content string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(content, t) {
			n++
		}
	}
	return n
}

// RelevanceScore is the share of distinct query terms that appear in the title or snippet.
func RelevanceScore(query, title, snippet string) float64 {
	queryTerms := termSet(query)
	if len(queryTerms) == 0 {
		return 0
	}
	contentTerms := termSet(title + " " + snippet)

	hits := 0
	for t := range queryTerms {
		if _, ok := contentTerms[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

func termSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(s)) {
		set[f] = struct{}{}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
