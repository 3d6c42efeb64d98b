package research

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/ai/aitest"
	"github.com/kayz/dobby/internal/search"
)

func TestEngineRunEndToEnd(t *testing.T) {
	p := newScriptedProvider()
	p.answers["acme funding 2026"] = []search.Hit{
		{Link: "https://reuters.com/acme", Title: "Acme raises $20M", Snippet: "Acme closed a $20M series B led by Example Ventures."},
	}
	p.answers["acme series b investors"] = []search.Hit{
		{Link: "https://reuters.com/acme", Title: "dup", Snippet: "duplicate hit that should be merged away"},
		{Link: "https://techcrunch.com/acme", Title: "Acme funding", Snippet: "Acme plans to expand its research team after funding."},
	}

	llm := &aitest.Fake{Func: func(_ context.Context, req ai.Request) (string, error) {
		last := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(last, "SOURCES:") {
			if strings.Count(last, "SOURCE_") != 2 {
				t.Errorf("expected 2 merged sources, prompt was:\n%s", last)
			}
			return "# Executive Summary\nAcme raised $20M.", nil
		}
		return `["acme funding 2026", "acme series b investors"]`, nil
	}}

	e := NewEngine(llm, p, Options{CacheTTL: time.Hour, SearchTimeout: time.Second, LLMTimeout: time.Second})
	got := e.Run(context.Background(), "how much did Acme raise?", "acme funding", "")
	require.Equal(t, "# Executive Summary\nAcme raised $20M.", got)
	require.Equal(t, 2, llm.Calls())
}

func TestEngineRunShortCircuitsFromContext(t *testing.T) {
	p := newScriptedProvider()
	llm := aitest.New("Here is the link: https://reuters.com/acme")
	e := NewEngine(llm, p, Options{})

	got := e.Run(context.Background(), "mana sumbernya?", "", "# Brief\n**Source:** https://reuters.com/acme")
	require.Equal(t, "Here is the link: https://reuters.com/acme", got)
	require.Equal(t, 1, llm.Calls())
}

func TestEngineRunNothingFound(t *testing.T) {
	p := newScriptedProvider()
	llm := aitest.New(`["nothing here one", "nothing here two"]`)
	e := NewEngine(llm, p, Options{})

	got := e.Run(context.Background(), "obscure thing", "", "")
	require.Equal(t, NoResultsMessage, got)
}

func TestEngineSearchSkipsSynthesis(t *testing.T) {
	p := newScriptedProvider()
	p.answers["acme funding"] = []search.Hit{hit("https://reuters.com/acme", "acme funding round")}
	p.answers["acme investors"] = []search.Hit{hit("https://example.org/acme", "acme investors list")}
	llm := aitest.New(`["acme funding", "acme investors"]`)
	e := NewEngine(llm, p, Options{LLMTimeout: time.Second})

	got := e.Search(context.Background(), "acme funding")
	require.Equal(t, []string{"https://example.org/acme", "https://reuters.com/acme"}, urls(got))
	require.Equal(t, 1, llm.Calls(), "only the planner may call the model")
}

func TestFormatResultsRanksAndLimits(t *testing.T) {
	require.Equal(t, NoResultsMessage, FormatResults(nil, 5))

	results := []Result{
		{Title: "weak", URL: "https://blog.io/a", Domain: "blog.io", Relevance: 0.1, Quality: 0.3},
		{Title: "strong", URL: "https://reuters.com/b", Domain: "reuters.com", Relevance: 0.9, Quality: 0.9, Snippet: "the details"},
		{Title: "middle", URL: "https://github.com/c", Domain: "github.com", Relevance: 0.5, Quality: 0.6},
	}
	out := FormatResults(results, 2)
	require.True(t, strings.HasPrefix(out, "### Scored results (2)"))
	require.Contains(t, out, "1. **strong** (reuters.com, score 0.90)")
	require.Contains(t, out, "2. **middle**")
	require.Contains(t, out, "   the details\n")
	require.NotContains(t, out, "weak")
	require.Equal(t, "weak", results[0].Title, "input order untouched")
}
