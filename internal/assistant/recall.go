package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

const noMemoriesMessage = "I couldn't find anything about that in our past conversations."

// stopwords dropped from keyword recall queries.
var stopwords = map[string]bool{
	"a": true, "about": true, "an": true, "and": true, "apa": true, "did": true,
	"do": true, "i": true, "ingat": true, "is": true, "kita": true, "me": true,
	"of": true, "remember": true, "said": true, "say": true, "the": true,
	"to": true, "we": true, "what": true, "yang": true, "you": true,
}

func keywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > 1 && !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// recall searches long-term memory, or the session store when memory is off,
// and synthesizes an answer from what it finds.
func (a *Agent) recall(ctx context.Context, query string) (string, error) {
	snippets, err := a.recallSnippets(ctx, query)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return noMemoriesMessage, nil
	}
	logger.Info("[Assistant] Recalled %d snippets for %q", len(snippets), query)

	var sb strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&sb, "[MEMORY %d]\n%s\n\n", i+1, s)
	}

	answer, err := a.generate(ctx, ai.Request{
		Messages: []ai.Message{
			ai.System(systemPrompt),
			ai.User(recallPrompt(sb.String(), query)),
		},
		Stream:      true,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (a *Agent) recallSnippets(ctx context.Context, query string) ([]string, error) {
	if a.memory != nil {
		items, err := a.memory.Search(ctx, query, a.recallK)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Content)
		}
		return out, nil
	}

	if a.store == nil {
		return nil, nil
	}
	kw := keywords(query)
	if len(kw) == 0 {
		return nil, nil
	}
	// any single keyword is enough; the model sorts out relevance
	seen := make(map[int64]bool)
	var out []string
	for _, k := range kw {
		msgs, err := a.store.SearchMessages([]string{k}, a.recallK)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			if seen[m.ID] || len(out) >= a.recallK {
				continue
			}
			seen[m.ID] = true
			out = append(out, fmt.Sprintf("%s: %s", m.Role, m.Content))
		}
	}
	return out, nil
}

func recallPrompt(memories, query string) string {
	return `Answer the user's question using ONLY the memories from past conversations below.
If they do not contain the answer, say so plainly.

MEMORIES:
---
` + memories + `---
QUESTION: "` + query + `"

ANSWER:`
}
