package search

import "context"

// Provider is anything that answers a keyword query with organic hits.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) (*Response, error)
}

// Engine is a configured Provider taking part in a Manager's fallback chain.
type Engine interface {
	Provider
	Type() string
	IsEnabled() bool
	Priority() int
}

type EngineFactory func(config EngineConfig) (Engine, error)

type EngineConfig struct {
	Name     string                 `yaml:"name"`
	Type     string                 `yaml:"type"`
	APIKey   string                 `yaml:"api_key,omitempty"`
	BaseURL  string                 `yaml:"base_url,omitempty"`
	Enabled  bool                   `yaml:"enabled"`
	Priority int                    `yaml:"priority"`
	Options  map[string]interface{} `yaml:"options,omitempty"`
}

// baseEngine carries the fields every engine shares.
type baseEngine struct {
	name     string
	apiKey   string
	baseURL  string
	enabled  bool
	priority int
}

func newBaseEngine(config EngineConfig, defaultURL string) baseEngine {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	return baseEngine{
		name:     config.Name,
		apiKey:   config.APIKey,
		baseURL:  baseURL,
		enabled:  config.Enabled,
		priority: config.Priority,
	}
}

func (e *baseEngine) Name() string {
	return e.name
}

func (e *baseEngine) IsEnabled() bool {
	return e.enabled
}

func (e *baseEngine) Priority() int {
	return e.priority
}
