package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainOf(t *testing.T) {
	cases := map[string]string{
		"https://www.Reuters.com/markets/x": "reuters.com",
		"http://docs.python.org/3/":         "docs.python.org",
		"https://api.github.com:443/repos":  "api.github.com:443",
		"not a url":                         "unknown",
		"":                                  "unknown",
		"https://%zz":                       "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, DomainOf(in), "DomainOf(%q)", in)
	}
}

func TestQualityScore(t *testing.T) {
	// unknown domain, no signals
	assert.InDelta(t, 0.4, QualityScore("https://example.org/a", "plain title", "plain words only"), 1e-9)

	// table weight plus one quality term
	assert.InDelta(t, 0.65, QualityScore("https://medium.com/p", "A study", "nothing else here"), 1e-9)

	// domain-expert phrase
	assert.InDelta(t, 0.48, QualityScore("https://example.org/a", "order book", "plain words only"), 1e-9)

	// hard data bonus
	assert.InDelta(t, 0.5, QualityScore("https://example.org/a", "plain", "up 12.5% today"), 1e-9)
}

func TestQualityScoreClamps(t *testing.T) {
	high := QualityScore("https://www.reuters.com/x", "Official report", "Acme raised $20M")
	assert.Equal(t, 1.0, high)

	low := QualityScore("https://spam.example/x", "Shocking pump to the moon", "click here and buy now")
	assert.Equal(t, 0.1, low)
}

func TestRelevanceScore(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, RelevanceScore("Bitcoin price today", "bitcoin PRICE", "live chart"), 1e-9)
	assert.Equal(t, 0.0, RelevanceScore("   ", "anything", "at all"))
	// repeated query terms count once
	assert.Equal(t, 1.0, RelevanceScore("eth eth", "ETH", ""))
}

func TestWeightedScore(t *testing.T) {
	r := Result{Relevance: 0.5, Quality: 1.0}
	assert.InDelta(t, 0.7, r.WeightedScore(), 1e-9)
}

func TestMergeResultsKeepsFirstOccurrence(t *testing.T) {
	a := []Result{{URL: "https://a", Title: "first"}, {URL: "https://b"}}
	b := []Result{{URL: "https://a", Title: "second"}, {URL: "https://c"}, {URL: ""}}
	got := MergeResults(a, b)
	assert.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "https://c", got[2].URL)
}
