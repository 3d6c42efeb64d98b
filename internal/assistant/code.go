package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

const defaultLanguage = "python"

// DetectLanguage asks the model which language a request wants. Anything
// unusable becomes python.
func (a *Agent) DetectLanguage(ctx context.Context, request string) string {
	out, err := a.generate(ctx, ai.Request{
		Messages: []ai.Message{ai.User(fmt.Sprintf(
			"Analyze the user's request and identify the programming language. Respond with only a single, lowercase word (e.g., \"python\"). Default to \"python\".\nUser Request: %q\nLanguage:",
			request))},
		Temperature: 0,
	})
	if err != nil {
		return defaultLanguage
	}
	return normalizeLanguage(out)
}

func normalizeLanguage(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return defaultLanguage
	}
	return sb.String()
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(code, language string) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "```") {
		if i := strings.IndexByte(code, '\n'); i >= 0 {
			code = code[i+1:]
		} else {
			code = strings.TrimPrefix(code, "```"+language)
			code = strings.TrimPrefix(code, "```")
		}
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}

func (a *Agent) generateCode(ctx context.Context, request string, history []ai.Message) (string, error) {
	language := a.DetectLanguage(ctx, request)
	logger.Info("[Assistant] Generating %s code", language)

	recent := history
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	var conv strings.Builder
	for _, m := range recent {
		fmt.Fprintf(&conv, "%s: %s\n", m.Role, m.Content)
	}

	raw, err := a.generate(ctx, ai.Request{
		Messages:    []ai.Message{ai.User(codePrompt(conv.String(), request, language))},
		Stream:      true,
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}

	code := StripFences(raw, language)
	if code == "" {
		return "", ai.ErrEmptyResponse
	}
	return fmt.Sprintf("Sure, here's the `%s` code you requested:\n```%s\n%s\n```", language, language, code), nil
}

func codePrompt(conversation, request, language string) string {
	return `You are an expert programmer. Write a clean, efficient and well-commented code snippet for the user's request, considering the recent conversation.
RECENT CONVERSATION:
---
` + conversation + `---
CURRENT USER REQUEST: "` + request + `"
Programming Language: ` + language + `
CRITICAL INSTRUCTIONS:
1. Output ONLY the raw source code.
2. Do NOT include explanations, introductory text or Markdown backticks.
3. The output must be pure code, ready to be saved directly to a file.`
}
