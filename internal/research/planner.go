package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

// QueryType steers query planning and the synthesis prompt.
type QueryType string

const (
	QueryCode       QueryType = "code"
	QueryTemporal   QueryType = "temporal"
	QueryDefinition QueryType = "definition"
	QueryComparison QueryType = "comparison"
	QueryGeneral    QueryType = "general"
)

const DefaultMaxQueries = 4

var queryTypePatterns = []struct {
	kind     QueryType
	patterns []*regexp.Regexp
}{
	{QueryCode, []*regexp.Regexp{
		regexp.MustCompile(`\b(code|kode|example|contoh|implementation|tutorial|how to|cara)\b`),
		regexp.MustCompile(`\b(python|javascript|react|api|github)\b`),
	}},
	{QueryTemporal, []*regexp.Regexp{
		regexp.MustCompile(`\b(harga|price|latest|terbaru|sekarang|current|recent|news|update|20\d{2})\b`),
		regexp.MustCompile(`\b(funding|investment|launch|release)\b`),
	}},
	{QueryDefinition, []*regexp.Regexp{
		regexp.MustCompile(`\b(apa itu|what is|definisi|pengertian|explain|jelaskan)\b`),
	}},
	{QueryComparison, []*regexp.Regexp{
		regexp.MustCompile(`\b(vs|versus|compared to|dibandingkan|compare)\b`),
	}},
}

// ClassifyQuery picks the first category whose patterns match; otherwise general.
func ClassifyQuery(query string) QueryType {
	lower := strings.ToLower(query)
	for _, c := range queryTypePatterns {
		for _, p := range c.patterns {
			if p.MatchString(lower) {
				return c.kind
			}
		}
	}
	return QueryGeneral
}

var (
	errPlanRejected  = errors.New("query plan rejected")
	jsonArrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)
)

// Planner expands one search query into several diversified ones.
type Planner struct {
	llm     ai.Completer
	timeout time.Duration
	now     func() time.Time
}

func NewPlanner(llm ai.Completer, timeout time.Duration) *Planner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Planner{llm: llm, timeout: timeout, now: time.Now}
}

// Plan returns up to maxQueries queries for baseQuery. It asks the model first and
// falls back to fixed templates when the answer is unusable. It never returns empty.
func (p *Planner) Plan(ctx context.Context, baseQuery string, queryType QueryType, maxQueries int) []string {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}

	queries, err := p.generate(ctx, baseQuery, queryType, maxQueries)
	if err == nil {
		logger.Debug("[Research] Smart queries generated: %q", queries)
		return queries
	}

	logger.Warn("[Research] Query generation failed, using templates: %v", err)
	fallbacksUsed.WithLabelValues("planner").Inc()
	return FallbackQueries(baseQuery, queryType, p.now(), maxQueries)
}

func (p *Planner) generate(ctx context.Context, baseQuery string, queryType QueryType, maxQueries int) ([]string, error) {
	if p.llm == nil {
		return nil, errors.New("no completion backend")
	}
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := ai.Generate(callCtx, p.llm, ai.Request{
		Messages:    []ai.Message{ai.User(plannerPrompt(baseQuery, queryType, maxQueries, p.now()))},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, err
	}
	return ParsePlan(response, maxQueries)
}

// ParsePlan pulls the first JSON string array out of a model response, trims and
// case-insensitively deduplicates it, and drops entries of five characters or less.
// Fewer than two surviving queries is a rejection.
func ParsePlan(response string, maxQueries int) ([]string, error) {
	raw := jsonArrayPattern.FindString(response)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON array", errPlanRejected)
	}
	var candidates []string
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %v", errPlanRejected, err)
	}

	seen := make(map[string]bool)
	var queries []string
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if seen[key] || len([]rune(q)) <= 5 {
			continue
		}
		seen[key] = true
		queries = append(queries, q)
	}

	if len(queries) < 2 {
		return nil, fmt.Errorf("%w: only %d usable queries", errPlanRejected, len(queries))
	}
	if maxQueries > 0 && len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries, nil
}

// FallbackQueries returns the deterministic template plan for queryType.
// Comparison queries use the general templates.
func FallbackQueries(baseQuery string, queryType QueryType, now time.Time, maxQueries int) []string {
	year := now.Year()
	month := now.Format("January")

	var queries []string
	switch queryType {
	case QueryCode:
		queries = []string{
			fmt.Sprintf("%s example", baseQuery),
			fmt.Sprintf("%s tutorial %d", baseQuery, year),
			fmt.Sprintf("%s documentation", baseQuery),
			fmt.Sprintf("%s github", baseQuery),
		}
	case QueryTemporal:
		queries = []string{
			fmt.Sprintf("%s site:coingecko.com %d", baseQuery, year),
			fmt.Sprintf("%s site:coinmarketcap.com latest", baseQuery),
			fmt.Sprintf("%s site:bloomberg.com %s %d", baseQuery, month, year),
			fmt.Sprintf("%s site:binance.com recent", baseQuery),
		}
	case QueryDefinition:
		queries = []string{
			fmt.Sprintf("what is %s", baseQuery),
			fmt.Sprintf("%s explained", baseQuery),
			fmt.Sprintf("%s overview %d", baseQuery, year),
			fmt.Sprintf("%s guide", baseQuery),
		}
	default:
		queries = []string{
			fmt.Sprintf("%s site:coingecko.com", baseQuery),
			fmt.Sprintf("%s site:bloomberg.com %d", baseQuery, year),
			fmt.Sprintf("%s site:reuters.com latest", baseQuery),
			fmt.Sprintf("%s site:coinmarketcap.com", baseQuery),
		}
	}

	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}

// DateContext describes "now" for prompts that need to favour recent sources.
func DateContext(now time.Time) string {
	_, week := now.ISOWeek()
	return fmt.Sprintf(`TEMPORAL CONTEXT:
- Current date: %s
- Current year: %d
- Current month: %s
- Week: %d
- For recent developments, prioritize %d and %s data.`,
		now.Format("02 January 2006"), now.Year(), now.Format("January"), week, now.Year(), now.Format("January"))
}

func plannerPrompt(baseQuery string, queryType QueryType, maxQueries int, now time.Time) string {
	month := now.Format("January")
	year := now.Year()
	return fmt.Sprintf(`You are a research librarian who writes web search queries.

Task: write %[1]d search queries for: %[2]q
Query type: %[3]s
Current period: %[4]s %[5]d

Rules:
- Each query must target a different kind of source. Spread them across primary data
  providers (CoinGecko, CoinMarketCap, Bloomberg), exchanges or official sources (Binance,
  Reuters, WSJ), technical or community sources (GitHub, Reddit, Stack Overflow), and one
  alternative source.
- Prefer accurate sources over popular ones.
- Add time markers such as %[5]d or "%[4]s %[5]d" when the topic changes over time.
- Use search operators where they help: site:, filetype:, "exact phrase", intitle:.
- Every query must still be about %[2]q.

Output: ONLY a JSON array of %[1]d strings.`, maxQueries, baseQuery, queryType, month, year)
}
