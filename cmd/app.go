package cmd

import (
	"fmt"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/assistant"
	"github.com/kayz/dobby/internal/config"
	"github.com/kayz/dobby/internal/logger"
	"github.com/kayz/dobby/internal/memory"
	"github.com/kayz/dobby/internal/persist"
	"github.com/kayz/dobby/internal/readle"
	"github.com/kayz/dobby/internal/research"
	"github.com/kayz/dobby/internal/router"
	"github.com/kayz/dobby/internal/search"
	"github.com/kayz/dobby/internal/security"
)

// app holds the components every command shares.
type app struct {
	llm      ai.Completer
	search   *search.Manager
	router   *router.Router
	research *research.Engine
	reader   *readle.Reader
}

func newApp(cfg *config.Config) (*app, error) {
	llm, err := ai.NewCompleter(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("ai provider: %w", err)
	}

	mgr, err := search.NewManager(cfg.Search, search.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("search engines: %w", err)
	}
	logger.Debug("[App] Search engines: %v", mgr.ListEngines())

	validator := security.NewURLValidator(!cfg.Security.EnableSSRFProtection)

	return &app{
		llm:    llm,
		search: mgr,
		router: router.New(llm, cfg.Router.ConfidenceThreshold, cfg.Router.Timeout()),
		research: research.NewEngine(llm, mgr, research.Options{
			MaxQueries:    cfg.Search.MaxQueries,
			TopK:          cfg.Search.TopK,
			CacheTTL:      cfg.Search.CacheTTL(),
			SearchTimeout: cfg.Search.Timeout(),
			LLMTimeout:    cfg.AI.Timeout(),
		}),
		reader: readle.NewReader(llm, readle.WithValidator(validator), readle.WithTimeout(cfg.AI.Timeout())),
	}, nil
}

// session is an assistant bound to a stored conversation.
type session struct {
	agent *assistant.Agent
	store *persist.Store
}

func (a *app) openSession(cfg *config.Config, name string) (*session, error) {
	store, err := persist.NewStore(cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	sess, err := store.GetOrCreateSession(name)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("session %q: %w", name, err)
	}

	var mem assistant.Memory
	if cfg.Memory.Enabled {
		ltm, err := openMemory(cfg.Memory)
		if err != nil {
			logger.Warn("[App] Long-term memory disabled: %v", err)
		} else {
			mem = ltm
		}
	}

	agent, err := assistant.New(assistant.Config{
		LLM:         a.llm,
		Router:      a.router,
		Research:    a.research,
		Reader:      a.reader,
		Memory:      mem,
		Store:       store,
		SessionID:   sess.ID,
		RecallLimit: cfg.Memory.TopK,
		Timeout:     cfg.AI.Timeout(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	recent, err := store.RecentMessages(sess.ID, 50)
	if err != nil {
		logger.Warn("[App] Could not load session history: %v", err)
	} else if len(recent) > 0 {
		history := make([]ai.Message, 0, len(recent))
		for _, m := range recent {
			history = append(history, ai.Message{Role: ai.Role(m.Role), Content: m.Content})
		}
		agent.Rehydrate(history)
		logger.Info("[App] Loaded %d turns from session %q", len(recent), name)
	}

	return &session{agent: agent, store: store}, nil
}

func openMemory(mc config.MemoryConfig) (*memory.LongTermMemory, error) {
	emb, err := memory.NewOpenAIEmbedder(mc.Embedding)
	if err != nil {
		return nil, err
	}
	return memory.Open(mc.DBPath, emb)
}

func (s *session) Close() error {
	return s.store.Close()
}
