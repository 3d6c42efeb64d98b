package router

import "regexp"

// Matched case-sensitively against the raw utterance; the first hit wins.
var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(0x[a-fA-F0-9]{40})\b`),
	regexp.MustCompile(`\b(bc1[a-zA-Z0-9]{25,39})\b`),
	regexp.MustCompile(`\b([13][a-km-zA-HJ-NP-Z1-9]{25,34})\b`),
	regexp.MustCompile(`\b([1-9A-HJ-NP-Za-km-z]{32,44})\b`),
}

// Requests to search again or for fresh data, matched against the lower-cased utterance.
// The third pattern needs a capital letter and so never matches.
var explicitSearchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(cari|search|find|lookup)\s+(ulang|again|fresh|new|update|terbaru)\b`),
	regexp.MustCompile(`\b(update|refresh|reload|latest|current|sekarang)\s+(info|data|harga|price)\b`),
	regexp.MustCompile(`\b(apa\s+itu|what\s+is|info\s+tentang|tell\s+me\s+about)\s+[A-Z]`),
	regexp.MustCompile(`\b(harga|price|cost|biaya)\s+(terbaru|current|sekarang|latest)\b`),
}

// Follow-ups about the previous answer. Matched against the lower-cased utterance.
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(mana|where|dimana)\s+(link|sumber|source)\b`),
	regexp.MustCompile(`\b(jelaskan|explain)\s+(lebih\s+)?(detail|lagi|more)\b`),
	regexp.MustCompile(`\b(kenapa|why|mengapa)\s+(begitu|itu|that)\b`),
	regexp.MustCompile(`\b(bagaimana|how|gimana)\s+(cara|way|caranya)\b`),
}

var urlPattern = regexp.MustCompile(`https?://[^\s"]+`)

// MatchAddress returns the first wallet address found in s.
func MatchAddress(s string) (string, bool) {
	for _, p := range addressPatterns {
		if m := p.FindString(s); m != "" {
			return m, true
		}
	}
	return "", false
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// FindURL returns the first http(s) URL in s, or "".
func FindURL(s string) string {
	return urlPattern.FindString(s)
}
