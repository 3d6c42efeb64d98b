package research

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
	"github.com/kayz/dobby/internal/search"
)

// Options tunes an Engine. Zero values pick the defaults.
type Options struct {
	MaxQueries    int
	TopK          int
	CacheTTL      time.Duration
	SearchTimeout time.Duration
	LLMTimeout    time.Duration
}

// Engine is the web search handler: plan, dispatch, merge and synthesize.
type Engine struct {
	planner     *Planner
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	maxQueries  int
}

func NewEngine(llm ai.Completer, provider search.Provider, opts Options) *Engine {
	if opts.MaxQueries <= 0 {
		opts.MaxQueries = DefaultMaxQueries
	}
	return &Engine{
		planner:     NewPlanner(llm, opts.LLMTimeout),
		dispatcher:  NewDispatcher(provider, NewCache(opts.CacheTTL), opts.SearchTimeout),
		synthesizer: NewSynthesizer(llm, opts.LLMTimeout, opts.TopK),
		maxQueries:  opts.MaxQueries,
	}
}

// Run answers userQuery, searching for searchQuery (userQuery when empty).
// A follow-up that previousContext can answer skips the search entirely.
// The returned text is never empty.
func (e *Engine) Run(ctx context.Context, userQuery, searchQuery, previousContext string) string {
	start := time.Now()
	defer func() { researchLatency.Observe(time.Since(start).Seconds()) }()

	requestID := uuid.NewString()[:8]
	if strings.TrimSpace(searchQuery) == "" {
		searchQuery = userQuery
	}

	if previousContext != "" {
		if answer, ok := e.synthesizer.AnswerFromContext(ctx, userQuery, previousContext); ok {
			logger.Info("[Research] %s answered from previous context", requestID)
			return answer
		}
	}

	queryType := ClassifyQuery(searchQuery)
	logger.Info("[Research] %s query classified as %s: %q", requestID, queryType, searchQuery)

	queries := e.planner.Plan(ctx, searchQuery, queryType, e.maxQueries)
	results := e.dispatcher.Execute(ctx, queries, queryType)
	logger.Info("[Research] %s %d queries, %d unique results in %v", requestID, len(queries), len(results), time.Since(start).Round(time.Millisecond))

	return e.synthesizer.Synthesize(ctx, results, userQuery, queryType)
}

// Search exposes the dispatcher for callers that want scored results without synthesis.
func (e *Engine) Search(ctx context.Context, searchQuery string) []Result {
	queryType := ClassifyQuery(searchQuery)
	queries := e.planner.Plan(ctx, searchQuery, queryType, e.maxQueries)
	return e.dispatcher.Execute(ctx, queries, queryType)
}
