package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kayz/dobby/internal/config"
	"github.com/kayz/dobby/internal/logger"
)

// Manager is a Provider that walks its engines in priority order until one answers.
type Manager struct {
	registry      *Registry
	engines       map[string]Engine
	primaryEngine string
	mu            sync.RWMutex
}

func NewManager(cfg config.SearchConfig, registry *Registry) (*Manager, error) {
	m := &Manager{
		registry:      registry,
		engines:       make(map[string]Engine),
		primaryEngine: cfg.PrimaryEngine,
	}

	for _, engineCfg := range cfg.Engines {
		if !engineCfg.Enabled {
			continue
		}
		err := m.AddEngine(EngineConfig{
			Name:     engineCfg.Name,
			Type:     engineCfg.Type,
			APIKey:   engineCfg.APIKey,
			BaseURL:  engineCfg.BaseURL,
			Enabled:  engineCfg.Enabled,
			Priority: engineCfg.Priority,
			Options:  engineCfg.Options,
		})
		if err != nil {
			logger.Warn("[Search] Skipping engine %s: %v", engineCfg.Name, err)
		}
	}

	if len(m.engines) == 0 {
		return nil, fmt.Errorf("no search engine could be configured")
	}
	return m, nil
}

func (m *Manager) Name() string {
	return "manager"
}

// AddEngine builds an engine through the registry and registers it under its name.
func (m *Manager) AddEngine(config EngineConfig) error {
	engine, err := m.registry.CreateEngine(config)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.engines[config.Name] = engine
	return nil
}

// ListEngines returns engine names in the order Search tries them.
func (m *Manager) ListEngines() []string {
	ordered := m.ordered()
	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		names = append(names, e.Name())
	}
	return names
}

// SetPrimaryEngine makes name the first engine Search tries.
func (m *Manager) SetPrimaryEngine(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.engines[name]; !ok {
		return fmt.Errorf("engine not found: %s", name)
	}

	m.primaryEngine = name
	return nil
}

// ordered lists enabled engines, primary first, then by ascending priority.
func (m *Manager) ordered() []Engine {
	m.mu.RLock()
	engines := make([]Engine, 0, len(m.engines))
	for _, e := range m.engines {
		if e.IsEnabled() {
			engines = append(engines, e)
		}
	}
	primary := m.primaryEngine
	m.mu.RUnlock()

	sort.SliceStable(engines, func(i, j int) bool {
		a, b := engines[i], engines[j]
		if (a.Name() == primary) != (b.Name() == primary) {
			return a.Name() == primary
		}
		if a.Priority() != b.Priority() {
			return a.Priority() < b.Priority()
		}
		return a.Name() < b.Name()
	})
	return engines
}

// Search returns the first non-empty answer. If every engine answers empty the
// last empty response is returned; if every engine fails the last error is.
func (m *Manager) Search(ctx context.Context, query string, limit int) (*Response, error) {
	engines := m.ordered()
	if len(engines) == 0 {
		return nil, fmt.Errorf("no available search engine")
	}

	var (
		lastErr   error
		lastEmpty *Response
	)
	for _, engine := range engines {
		resp, err := engine.Search(ctx, query, limit)
		if err != nil {
			logger.Debug("[Search] %s failed for %q: %v", engine.Name(), query, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.OrganicResults) > 0 {
			return resp, nil
		}
		lastEmpty = resp
	}

	if lastEmpty != nil {
		return lastEmpty, nil
	}
	return nil, lastErr
}

// SearchWithEngine asks exactly one engine, with no fallback.
func (m *Manager) SearchWithEngine(ctx context.Context, engineName, query string, limit int) (*Response, error) {
	m.mu.RLock()
	engine, ok := m.engines[engineName]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("engine not found: %s", engineName)
	}

	return engine.Search(ctx, query, limit)
}

// FormatResults renders a raw response as markdown.
func FormatResults(resp *Response) string {
	if resp == nil || len(resp.OrganicResults) == 0 {
		return "No search results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### Search results (%s, %v)\n\n", resp.Engine, resp.Duration.Round(1e6)))

	for i, hit := range resp.OrganicResults {
		sb.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, hit.Title))
		sb.WriteString(fmt.Sprintf("   %s\n", hit.Link))
		if hit.Snippet != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", hit.Snippet))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
