package ai

import (
	"fmt"
	"time"

	"github.com/kayz/dobby/internal/config"
)

// ErrUnsupportedProvider is returned for an unknown provider name.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported ai provider: %q", e.Provider)
}

var defaultBaseURLs = map[string]string{
	"fireworks":  "https://api.fireworks.ai/inference/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

// NewProvider builds a single backend from its config block.
func NewProvider(cfg config.ProviderConfig) (Completer, error) {
	switch cfg.Provider {
	case "", "openai", "fireworks", "deepseek", "openrouter", "compat":
		name := cfg.Provider
		if name == "" {
			name = "openai"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURLs[name]
		}
		return NewOpenAIProvider(OpenAIConfig{
			ProviderName: name,
			APIKey:       cfg.APIKey,
			BaseURL:      baseURL,
			Model:        cfg.Model,
		})
	case "anthropic", "claude":
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

// NewCompleter builds the configured provider, wrapped in a failover chain when fallbacks exist.
func NewCompleter(cfg config.AIConfig) (Completer, error) {
	primary, err := NewProvider(cfg.ProviderConfig)
	if err != nil {
		return nil, err
	}
	if len(cfg.Fallbacks) == 0 {
		return primary, nil
	}

	chain := []Completer{primary}
	for _, fb := range cfg.Fallbacks {
		p, err := NewProvider(fb)
		if err != nil {
			return nil, fmt.Errorf("fallback %s: %w", fb.Provider, err)
		}
		chain = append(chain, p)
	}
	cooldown := time.Duration(cfg.CooldownSeconds) * time.Second
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return NewFailoverCompleter(cooldown, chain...), nil
}
