package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errInvalidClassification = errors.New("invalid classification payload")

const classifierSystemPrompt = "You are a precise intent classification system. Always return valid JSON."

// classification is the classifier's JSON payload after validation.
type classification struct {
	Intent         string
	Confidence     float64
	Reasoning      string
	SuggestedQuery string
}

// parseClassification decodes a classifier payload. intent and reasoning must be
// strings and confidence a number; anything else is errInvalidClassification.
func parseClassification(payload string) (classification, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &raw); err != nil {
		return classification{}, fmt.Errorf("%w: %v", errInvalidClassification, err)
	}

	intent, ok := raw["intent"].(string)
	if !ok {
		return classification{}, fmt.Errorf("%w: intent missing or not a string", errInvalidClassification)
	}
	confidence, ok := raw["confidence"].(float64)
	if !ok {
		return classification{}, fmt.Errorf("%w: confidence missing or not a number", errInvalidClassification)
	}
	reasoning, ok := raw["reasoning"].(string)
	if !ok {
		return classification{}, fmt.Errorf("%w: reasoning missing or not a string", errInvalidClassification)
	}
	suggested, _ := raw["suggested_query"].(string)

	return classification{
		Intent:         strings.ToUpper(strings.TrimSpace(intent)),
		Confidence:     clamp01(confidence),
		Reasoning:      reasoning,
		SuggestedQuery: suggested,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// decisionFrom turns a validated classification into a Decision.
func decisionFrom(c classification, utterance string, conv condensed) Decision {
	d := Decision{
		Tool:       ToolForIntent(c.Intent),
		Confidence: c.Confidence,
		Reasoning:  "LLM: " + c.Reasoning,
		Method:     MethodLLM,
	}

	suggested := c.SuggestedQuery
	if strings.TrimSpace(suggested) == "" {
		suggested = utterance
	}

	switch c.Intent {
	case "READLE":
		if u := urlPattern.FindString(suggested); u != "" {
			d.Query = strPtr(u)
		}
	case "CONTEXT_ANSWER":
		d.Query = strPtr(utterance)
		if conv.hasSearchResults {
			d.UseContext = true
			d.PreviousResults = strPtr(conv.lastContext)
		}
	case "FRESH_SEARCH", "MEMORY_RECALL":
		d.Query = strPtr(suggested)
	default:
		d.Query = strPtr(utterance)
	}
	return d
}

func classificationPrompt(utterance, conversation string) string {
	return fmt.Sprintf(`You select the right tool for the user's latest message.

CONVERSATION CONTEXT:
%s

CURRENT USER INPUT: %q

TOOLS:

1. GENERAL_CHAT
   Greetings, thanks, small talk, and summaries of the current conversation
   ("how are you", "thank you", "what did we talk about before?").

2. MEMORY_RECALL
   The user asks whether you remember a specific, named topic from an earlier session
   ("do you remember Nillion?", "we once discussed wallet X").
   Not for summaries of the current chat.

3. CONTEXT_ANSWER
   An immediate follow-up question about the last response.

4. CODE_GENERATOR
   Write or modify code.

5. READLE
   Read and summarize the content of a specific URL.

6. ADDRESS_ANALYSIS
   Analyze a new crypto wallet address.

7. FRESH_SEARCH
   A new question that needs current information from the internet.

Reply with one JSON object:
{
  "intent": "<one of the labels above>",
  "confidence": <number between 0 and 1>,
  "reasoning": "<one sentence>",
  "suggested_query": "<search query, URL or topic for the tool>"
}

Examples:
- "what did we talk about before?" -> GENERAL_CHAT
- "do you remember, we once discussed Nillion?" -> MEMORY_RECALL
- "can you make the code more complete?" -> CODE_GENERATOR`, conversation, utterance)
}
