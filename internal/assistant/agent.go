// Package assistant is the conversational front end: it routes each utterance,
// runs the chosen handler and keeps the session state between turns.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
	"github.com/kayz/dobby/internal/memory"
	"github.com/kayz/dobby/internal/persist"
	"github.com/kayz/dobby/internal/readle"
	"github.com/kayz/dobby/internal/router"
)

// Classifier picks the handler for an utterance.
type Classifier interface {
	Classify(ctx context.Context, utterance string, history []ai.Message) router.Decision
}

// Researcher answers questions from the web.
type Researcher interface {
	Run(ctx context.Context, userQuery, searchQuery, previousContext string) string
}

// PageReader summarizes a single URL.
type PageReader interface {
	Summarize(ctx context.Context, rawURL string) (string, error)
}

// Memory is the optional long-term semantic store.
type Memory interface {
	Add(ctx context.Context, content, tool string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]memory.Item, error)
}

// SessionStore persists turns and serves keyword recall.
type SessionStore interface {
	AddMessage(sessionID int64, msg persist.Message) error
	SearchMessages(keywords []string, limit int) ([]persist.Message, error)
}

const defaultTimeout = 60 * time.Second

// Config wires an Agent. LLM, Router and Research are required.
type Config struct {
	LLM      ai.Completer
	Router   Classifier
	Research Researcher
	Reader   PageReader
	Address  AddressAnalyzer
	Memory   Memory
	Store    SessionStore

	SessionID   int64
	RecallLimit int
	// Timeout bounds every model call a handler makes. Defaults to a minute.
	Timeout time.Duration
}

// Reply is the outcome of one turn.
type Reply struct {
	Text     string
	Tool     router.Tool
	Decision router.Decision
	Duration time.Duration
	Err      error
}

// Agent holds one conversation.
type Agent struct {
	llm       ai.Completer
	router    Classifier
	research  Researcher
	reader    PageReader
	address   AddressAnalyzer
	memory    Memory
	store     SessionStore
	sessionID int64
	recallK   int
	timeout   time.Duration

	mu            sync.Mutex
	history       []ai.Message
	activeContext string
}

func New(cfg Config) (*Agent, error) {
	if cfg.LLM == nil {
		return nil, errors.New("assistant: LLM is required")
	}
	if cfg.Router == nil {
		return nil, errors.New("assistant: router is required")
	}
	if cfg.Research == nil {
		return nil, errors.New("assistant: research engine is required")
	}

	a := &Agent{
		llm:       cfg.LLM,
		router:    cfg.Router,
		research:  cfg.Research,
		reader:    cfg.Reader,
		address:   cfg.Address,
		memory:    cfg.Memory,
		store:     cfg.Store,
		sessionID: cfg.SessionID,
		recallK:   cfg.RecallLimit,
		timeout:   cfg.Timeout,
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.reader == nil {
		a.reader = readle.NewReader(cfg.LLM, readle.WithTimeout(a.timeout))
	}
	if a.address == nil {
		a.address = FamilyAnalyzer{}
	}
	if a.recallK <= 0 {
		a.recallK = 5
	}
	return a, nil
}

// generate is ai.Generate under the per-call deadline.
func (a *Agent) generate(ctx context.Context, req ai.Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return ai.Generate(callCtx, a.llm, req)
}

// Rehydrate replaces the conversation with history loaded from a previous
// session. The last assistant turn becomes the active context when it carries
// results worth following up on.
func (a *Agent) Rehydrate(history []ai.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = a.history[:0]
	for _, m := range history {
		if m.Role != ai.RoleSystem {
			a.history = append(a.history, m)
		}
	}
	a.activeContext = ""

	if n := len(a.history); n > 0 {
		last := a.history[n-1]
		if last.Role == ai.RoleAssistant && router.HasContextMarker(last.Content) {
			a.activeContext = last.Content
			logger.Info("[Assistant] Context rehydrated from previous session")
		}
	}
}

// History returns a copy of the conversation so far.
func (a *Agent) History() []ai.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ai.Message(nil), a.history...)
}

// ActiveContext is the output of the last context-producing handler, or "".
func (a *Agent) ActiveContext() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeContext
}

// Respond handles one user utterance. Handler failures are reported in
// Reply.Err and replaced by an apology; Reply.Text is never empty.
func (a *Agent) Respond(ctx context.Context, utterance string) Reply {
	start := time.Now()
	utterance = strings.TrimSpace(utterance)

	a.mu.Lock()
	a.history = append(a.history, ai.User(utterance))
	history := append([]ai.Message(nil), a.history...)
	active := a.activeContext
	a.mu.Unlock()

	decision := a.router.Classify(ctx, utterance, history)
	tool := decision.Tool
	if !tool.Valid() {
		tool = router.ToolGeneralChat
	}

	text, err := a.dispatch(ctx, tool, decision, utterance, history, active)
	if err != nil {
		handlerFailures.WithLabelValues(string(tool)).Inc()
		logger.Error("[Assistant] %s failed: %v", tool, err)
		if strings.TrimSpace(text) == "" {
			text = apology(tool)
		}
	}
	repliesTotal.WithLabelValues(string(tool)).Inc()

	a.mu.Lock()
	a.history = append(a.history, ai.Assistant(text))
	switch tool {
	case router.ToolWebSearch, router.ToolReadle, router.ToolCodeGenerator, router.ToolMemoryRecall, router.ToolAddressAnalyzer:
		a.activeContext = text
		logger.Debug("[Assistant] Context saved from %s", tool)
	case router.ToolGeneralChat:
		if a.activeContext != "" {
			logger.Debug("[Assistant] Active context cleared after general chat")
		}
		a.activeContext = ""
	}
	a.mu.Unlock()

	a.persist(ctx, utterance, text, tool)

	return Reply{
		Text:     text,
		Tool:     tool,
		Decision: decision,
		Duration: time.Since(start),
		Err:      err,
	}
}

func (a *Agent) dispatch(ctx context.Context, tool router.Tool, d router.Decision, utterance string, history []ai.Message, active string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%s panicked: %v", tool, p)
		}
	}()

	switch tool {
	case router.ToolAddressAnalyzer:
		return a.analyzeAddress(ctx, d.QueryOr(utterance))
	case router.ToolWebSearch:
		return a.webSearch(ctx, utterance, d.QueryOr(utterance), history), nil
	case router.ToolContextAnswer:
		if active == "" {
			return a.generalChat(ctx, history)
		}
		return a.contextAnswer(ctx, utterance, active)
	case router.ToolCodeGenerator:
		return a.generateCode(ctx, utterance, history)
	case router.ToolReadle:
		target := d.QueryOr("")
		if target == "" {
			target = router.FindURL(utterance)
		}
		if target == "" {
			return "I need a URL to read. Please include the link you want summarized.", nil
		}
		return a.reader.Summarize(ctx, target)
	case router.ToolMemoryRecall:
		return a.recall(ctx, d.QueryOr(utterance))
	case router.ToolGeneralChat:
		return a.generalChat(ctx, history)
	default:
		return "", fmt.Errorf("unknown tool %q", tool)
	}
}

// persist stores both turns and, with long-term memory on, the exchange itself.
// Errors are logged only.
func (a *Agent) persist(ctx context.Context, utterance, text string, tool router.Tool) {
	if a.store != nil {
		if err := a.store.AddMessage(a.sessionID, persist.Message{Role: string(ai.RoleUser), Content: utterance}); err != nil {
			logger.Warn("[Assistant] Session save error: %v", err)
		} else if err := a.store.AddMessage(a.sessionID, persist.Message{Role: string(ai.RoleAssistant), Content: text, Tool: string(tool)}); err != nil {
			logger.Warn("[Assistant] Session save error: %v", err)
		}
	}
	if a.memory != nil {
		item := fmt.Sprintf("User: %s\nDobby (%s): %s", utterance, tool, text)
		if _, err := a.memory.Add(ctx, item, string(tool)); err != nil {
			logger.Warn("[Assistant] Memory save error: %v", err)
		}
	}
}

func apology(tool router.Tool) string {
	switch tool {
	case router.ToolCodeGenerator:
		return "Sorry, I failed to generate the code."
	case router.ToolContextAnswer:
		return "Sorry, an error occurred while processing the answer from previous context."
	default:
		return "Sorry, an error occurred while processing the response. Please try again."
	}
}
