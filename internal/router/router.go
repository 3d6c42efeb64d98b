package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

const DefaultThreshold = 0.8

// Router layers address rules, a model classifier and keyword fallbacks.
type Router struct {
	llm       ai.Completer
	threshold float64
	timeout   time.Duration

	mu          sync.Mutex
	lastContext string
}

// New returns a Router. A zero threshold or timeout picks the default.
func New(llm ai.Completer, threshold float64, timeout time.Duration) *Router {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Router{llm: llm, threshold: threshold, timeout: timeout}
}

// Classify routes one utterance. It never fails: every error path ends in the
// keyword fallback, whose last resort is general chat.
func (r *Router) Classify(ctx context.Context, utterance string, history []ai.Message) Decision {
	d := r.classify(ctx, utterance, history)
	decisionsTotal.WithLabelValues(string(d.Tool), string(d.Method)).Inc()
	logger.Info("[Router] %s", d)
	logger.Debug("[Router] Reasoning: %s", d.Reasoning)
	return d
}

func (r *Router) classify(ctx context.Context, utterance string, history []ai.Message) Decision {
	if addr, ok := MatchAddress(utterance); ok {
		return Decision{
			Tool:       ToolAddressAnalyzer,
			Query:      strPtr(addr),
			Confidence: 0.95,
			Reasoning:  fmt.Sprintf("Rule-based: Cryptocurrency address pattern detected (%q)", addr),
			Method:     MethodRules,
		}
	}

	conv := condense(history)
	if conv.hasSearchResults {
		r.setLastContext(conv.lastContext)
	}

	if d, err := r.classifyWithLLM(ctx, utterance, conv); err != nil {
		classifierFailures.Inc()
		logger.Warn("[Router] LLM classification failed: %v", err)
	} else if d.Confidence >= r.threshold {
		return d
	} else {
		logger.Debug("[Router] LLM confidence %.2f below %.2f, using rules", d.Confidence, r.threshold)
	}

	return r.fallback(utterance)
}

func (r *Router) classifyWithLLM(ctx context.Context, utterance string, conv condensed) (d Decision, err error) {
	if r.llm == nil {
		return Decision{}, fmt.Errorf("no completion backend")
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("classifier panicked: %v", p)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := ai.Generate(callCtx, r.llm, ai.Request{
		Messages: []ai.Message{
			ai.System(classifierSystemPrompt),
			ai.User(classificationPrompt(utterance, conv.text)),
		},
		Temperature:    0,
		ResponseFormat: ai.FormatJSON,
	})
	if err != nil {
		return Decision{}, err
	}

	c, err := parseClassification(payload)
	if err != nil {
		return Decision{}, err
	}
	return decisionFrom(c, utterance, conv), nil
}

// fallback applies the keyword rules to the lower-cased utterance.
func (r *Router) fallback(utterance string) Decision {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	if matchAny(explicitSearchPatterns, lower) {
		return Decision{
			Tool:       ToolWebSearch,
			Query:      strPtr(utterance),
			Confidence: 0.8,
			Reasoning:  "Rule-based: Explicit search pattern detected",
			Method:     MethodFallback,
		}
	}

	if matchAny(followUpPatterns, lower) {
		d := Decision{
			Tool:       ToolContextAnswer,
			Query:      strPtr(utterance),
			Confidence: 0.7,
			Reasoning:  "Rule-based: Follow-up pattern detected",
			UseContext: true,
			Method:     MethodFallback,
		}
		if last := r.LastContext(); last != "" {
			d.PreviousResults = strPtr(last)
		}
		return d
	}

	return Decision{
		Tool:       ToolGeneralChat,
		Confidence: 0.5,
		Reasoning:  "Rule-based: Default fallback",
		Method:     MethodFallback,
	}
}

func (r *Router) setLastContext(s string) {
	r.mu.Lock()
	r.lastContext = s
	r.mu.Unlock()
}

// LastContext is the most recent context-bearing assistant turn the router has seen.
func (r *Router) LastContext() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastContext
}
