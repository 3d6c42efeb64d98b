package assistant

import (
	"context"
	"strings"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

const (
	systemPrompt = `You are an intelligent and helpful AI assistant named Dobby.

Key characteristics:
1. Use natural, friendly but still informative language.
2. Remember and use previous conversation context.
3. Give answers that are directly relevant to the question.
4. If the user asks for sources or links from earlier information, refer to the existing search results.
5. Don't apologize repeatedly. Go straight to the solution.`

	maxActiveContext = 3000
	searchLookback   = 4
)

// searchMarkers identify an assistant turn that holds search results.
var searchMarkers = []string{"# Key Points", "# Conclusion", "Source:", "https:", "Sumber:", "[Source]", "**Source**"}

// recentSearchContext returns the latest assistant turn among the last few
// that carries search results, or "".
func recentSearchContext(history []ai.Message) string {
	start := len(history) - searchLookback
	if start < 0 {
		start = 0
	}
	for i := len(history) - 1; i >= start; i-- {
		m := history[i]
		if m.Role != ai.RoleAssistant {
			continue
		}
		for _, marker := range searchMarkers {
			if strings.Contains(m.Content, marker) {
				return m.Content
			}
		}
	}
	return ""
}

func (a *Agent) webSearch(ctx context.Context, utterance, query string, history []ai.Message) string {
	return a.research.Run(ctx, utterance, query, recentSearchContext(history))
}

func (a *Agent) contextAnswer(ctx context.Context, utterance, active string) (string, error) {
	logger.Info("[Assistant] Answering from active context")
	if r := []rune(active); len(r) > maxActiveContext {
		active = string(r[:maxActiveContext])
	}
	return a.generate(ctx, ai.Request{
		Messages: []ai.Message{
			ai.System("You are a helpful assistant that intelligently explains and expands on provided context."),
			ai.User(contextPrompt(active, utterance)),
		},
		Stream:      true,
		Temperature: 0.25,
	})
}

func contextPrompt(active, utterance string) string {
	return `You are an intelligent AI assistant. Answer the user's follow-up question based on the latest conversation context.

LATEST CONVERSATION CONTEXT:
---
` + active + `
---
USER'S FOLLOW-UP QUESTION: "` + utterance + `"

INSTRUCTIONS:
1. Carefully analyze the context and the user's request.
2. If the user asks for an explanation, analysis or opinion about the context (including code), give an in-depth, helpful answer.
3. If the user asks to complete or modify code, do it.
4. If the user asks about specific facts, answer ONLY from the context. Do not make up facts.

YOUR ANALYTICAL ANSWER:`
}

func (a *Agent) generalChat(ctx context.Context, history []ai.Message) (string, error) {
	msgs := make([]ai.Message, 0, len(history)+1)
	msgs = append(msgs, ai.System(systemPrompt))
	for _, m := range history {
		if m.Role != ai.RoleSystem {
			msgs = append(msgs, m)
		}
	}
	return a.generate(ctx, ai.Request{
		Messages:    msgs,
		Stream:      true,
		Temperature: 0.3,
	})
}
