package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kayz/dobby/internal/logger"
	"github.com/kayz/dobby/internal/search"
)

const (
	rawHitsPerQuery  = 10
	keptPerQuery     = 8
	minSnippetLength = 20
)

// Dispatcher runs one search per planned query, concurrently, through the cache.
type Dispatcher struct {
	provider search.Provider
	cache    *Cache
	timeout  time.Duration
}

// NewDispatcher returns a dispatcher. timeout bounds every single provider call.
func NewDispatcher(provider search.Provider, cache *Cache, timeout time.Duration) *Dispatcher {
	if cache == nil {
		cache = NewCache(time.Hour)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{provider: provider, cache: cache, timeout: timeout}
}

// Execute searches every query and returns the merged, URL-deduplicated results.
// A query that fails contributes nothing; it never cancels its siblings.
// Lists are merged in query order, so the output does not depend on timing.
func (d *Dispatcher) Execute(ctx context.Context, queries []string, queryType QueryType) []Result {
	if len(queries) == 0 {
		return nil
	}

	lists := make([][]Result, len(queries))
	var g errgroup.Group
	g.SetLimit(len(queries))
	for i, q := range queries {
		g.Go(func() error {
			lists[i] = d.searchOne(ctx, q, queryType)
			return nil
		})
	}
	_ = g.Wait()

	return MergeResults(lists...)
}

func (d *Dispatcher) searchOne(ctx context.Context, query string, queryType QueryType) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Research] Search panicked for %q: %v", query, r)
			queryFailures.Inc()
			results = nil
		}
	}()

	if cached, ok := d.cache.Get(query); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		logger.Debug("[Research] Cache hit for %q", query)
		return cached
	}
	cacheLookups.WithLabelValues("miss").Inc()

	results, raw, err := d.fetch(ctx, query)
	if err != nil {
		queryFailures.Inc()
		logger.Warn("[Research] Search failed for %q (%s): %v", query, queryType, err)
		return nil
	}

	// an empty answer may be a transient engine fallback; let the next call retry
	if raw > 0 {
		d.cache.Put(query, results)
	}
	logger.Debug("[Research] %d validated results for %q", len(results), query)
	return results
}

// fetch returns the scored results and the number of raw hits they came from.
func (d *Dispatcher) fetch(ctx context.Context, query string) ([]Result, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.provider.Search(callCtx, query, rawHitsPerQuery)
	if err != nil {
		return nil, 0, err
	}
	if resp == nil {
		return nil, 0, fmt.Errorf("%s returned no response", d.provider.Name())
	}
	return ScoreHits(query, resp.OrganicResults), len(resp.OrganicResults), nil
}

// ScoreHits validates raw hits and returns the best keptPerQuery of them.
// Hits without a URL, repeating a URL, or with a snippet under 20 characters are dropped.
func ScoreHits(query string, hits []search.Hit) []Result {
	seen := make(map[string]bool)
	now := time.Now()
	var results []Result
	for _, h := range hits {
		snippet := strings.TrimSpace(h.Snippet)
		if h.Link == "" || seen[h.Link] || len([]rune(snippet)) < minSnippetLength {
			continue
		}
		seen[h.Link] = true

		title := h.Title
		if title == "" {
			title = "No Title"
		}
		results = append(results, Result{
			Title:     title,
			URL:       h.Link,
			Snippet:   snippet,
			Domain:    DomainOf(h.Link),
			Relevance: RelevanceScore(query, title, snippet),
			Quality:   QualityScore(h.Link, title, snippet),
			Timestamp: now,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].WeightedScore() > results[j].WeightedScore()
	})
	if len(results) > keptPerQuery {
		results = results[:keptPerQuery]
	}
	return results
}
