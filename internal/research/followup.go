package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

// NeedFreshSearch is the sentinel a model answers with when the old context is not enough.
const NeedFreshSearch = "NEED_FRESH_SEARCH"

const maxFollowUpContext = 2000

var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(link|sumber|source)`),
	regexp.MustCompile(`\b(mana|where|dimana)`),
	regexp.MustCompile(`\b(jelaskan|explain).*(detail|lebih)`),
	regexp.MustCompile(`\b(kenapa|why|mengapa)`),
	regexp.MustCompile(`\b(bagaimana|how|cara)`),
}

// IsFollowUp reports whether an utterance looks answerable from earlier results.
func IsFollowUp(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, p := range followUpPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// AnswerFromContext tries to answer a follow-up from the previous brief.
// ok is false when the question is not a follow-up, the model declines with
// NeedFreshSearch, or the call fails; the caller then runs a full search.
func (s *Synthesizer) AnswerFromContext(ctx context.Context, utterance, previous string) (answer string, ok bool) {
	if strings.TrimSpace(previous) == "" || !IsFollowUp(utterance) || s.llm == nil {
		return "", false
	}

	if r := []rune(previous); len(r) > maxFollowUpContext {
		previous = string(r[:maxFollowUpContext])
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := ai.Generate(callCtx, s.llm, ai.Request{
		Messages:    []ai.Message{ai.User(followUpPrompt(previous, utterance))},
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("[Research] Context answer failed: %v", err)
		return "", false
	}
	if strings.Contains(text, NeedFreshSearch) {
		logger.Debug("[Research] Previous context insufficient, searching again")
		return "", false
	}
	return strings.TrimSpace(text), true
}

func followUpPrompt(previous, question string) string {
	return fmt.Sprintf(`Answer the follow-up question using the previous search results below.

PREVIOUS SEARCH CONTEXT:
%s

FOLLOW-UP QUESTION: %s

- If the context contains what is needed, answer directly.
- Keep the same markdown style and include the relevant links from the context.
- If the context is not enough, reply with exactly %s.`, previous, question, NeedFreshSearch)
}
