package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	AI       AIConfig       `yaml:"ai,omitempty"`
	Search   SearchConfig   `yaml:"search,omitempty"`
	Router   RouterConfig   `yaml:"router,omitempty"`
	Memory   MemoryConfig   `yaml:"memory,omitempty"`
	Security SecurityConfig `yaml:"security"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	// SessionDB is the sqlite file holding the conversation log.
	SessionDB string `yaml:"session_db,omitempty"`
}

// SearchEngineConfig configures one search backend.
type SearchEngineConfig struct {
	Name     string                 `yaml:"name"`
	Type     string                 `yaml:"type"`
	APIKey   string                 `yaml:"api_key,omitempty"`
	BaseURL  string                 `yaml:"base_url,omitempty"`
	Enabled  bool                   `yaml:"enabled"`
	Priority int                    `yaml:"priority"`
	Options  map[string]interface{} `yaml:"options,omitempty"`
}

// SearchConfig configures the engines and the multi-query research pipeline.
type SearchConfig struct {
	PrimaryEngine   string               `yaml:"primary_engine"`
	Engines         []SearchEngineConfig `yaml:"engines"`
	TimeoutSeconds  int                  `yaml:"timeout_seconds,omitempty"`
	CacheTTLMinutes int                  `yaml:"cache_ttl_minutes,omitempty"`
	MaxQueries      int                  `yaml:"max_queries,omitempty"`
	TopK            int                  `yaml:"top_k,omitempty"`
}

// Timeout is the per-call deadline for one provider request.
func (s SearchConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL is how long a fetched result list stays fresh.
func (s SearchConfig) CacheTTL() time.Duration {
	if s.CacheTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

// ProviderConfig describes one generative endpoint.
type ProviderConfig struct {
	Provider       string `yaml:"provider,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	Model          string `yaml:"model,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Timeout is the per-call deadline for one completion.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type AIConfig struct {
	ProviderConfig `yaml:",inline"`
	// Fallbacks are tried in order when the primary provider fails.
	Fallbacks []ProviderConfig `yaml:"fallbacks,omitempty"`
	// CooldownSeconds is how long a failed provider is skipped.
	CooldownSeconds int `yaml:"cooldown_seconds,omitempty"`
}

type RouterConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold,omitempty"`
	TimeoutSeconds      int     `yaml:"timeout_seconds,omitempty"`
}

// Timeout bounds the classification call.
func (r RouterConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type EmbeddingConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

type MemoryConfig struct {
	Enabled   bool            `yaml:"enabled"`
	DBPath    string          `yaml:"db_path,omitempty"`
	TopK      int             `yaml:"top_k,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
}

type SecurityConfig struct {
	EnableSSRFProtection bool `yaml:"enable_ssrf_protection"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "console",
		},
		AI: AIConfig{
			ProviderConfig: ProviderConfig{
				Provider:       "openai",
				Model:          "gpt-4o-mini",
				TimeoutSeconds: 60,
			},
			CooldownSeconds: 60,
		},
		Search: SearchConfig{
			PrimaryEngine:   "brave",
			TimeoutSeconds:  15,
			CacheTTLMinutes: 60,
			MaxQueries:      4,
			TopK:            8,
			Engines: []SearchEngineConfig{
				{
					Name:     "brave",
					Type:     "brave",
					Enabled:  true,
					Priority: 1,
				},
				{
					Name:     "tavily",
					Type:     "tavily",
					Enabled:  true,
					Priority: 2,
				},
				{
					Name:     "duckduckgo",
					Type:     "duckduckgo",
					Enabled:  true,
					Priority: 3,
				},
			},
		},
		Router: RouterConfig{
			ConfidenceThreshold: 0.8,
			TimeoutSeconds:      20,
		},
		Memory: MemoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(ConfigDir(), "memory"),
			TopK:    5,
			Embedding: EmbeddingConfig{
				Model: "text-embedding-3-small",
			},
		},
		Security: SecurityConfig{
			EnableSSRFProtection: true,
		},
		SessionDB: filepath.Join(ConfigDir(), "sessions.db"),
	}
}

func ConfigDir() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".dobby")
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".dobby.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath reads a config file over the defaults. A missing file is not an error.
// Secrets found in the environment override the file.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := getEnv("DOBBY_AI_PROVIDER", ""); v != "" {
		c.AI.Provider = v
	}
	if v := getEnv("DOBBY_AI_MODEL", ""); v != "" {
		c.AI.Model = v
	}
	if v := getEnv("DOBBY_AI_BASE_URL", ""); v != "" {
		c.AI.BaseURL = v
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = getEnv("DOBBY_AI_API_KEY", providerKeyFromEnv(c.AI.Provider))
	}
	for i := range c.AI.Fallbacks {
		if c.AI.Fallbacks[i].APIKey == "" {
			c.AI.Fallbacks[i].APIKey = providerKeyFromEnv(c.AI.Fallbacks[i].Provider)
		}
	}
	if c.Memory.Embedding.APIKey == "" {
		c.Memory.Embedding.APIKey = getEnv("OPENAI_API_KEY", "")
	}
	for i := range c.Search.Engines {
		e := &c.Search.Engines[i]
		if e.APIKey != "" {
			continue
		}
		switch e.Type {
		case "brave":
			e.APIKey = getEnv("BRAVE_API_KEY", "")
		case "tavily":
			e.APIKey = getEnv("TAVILY_API_KEY", "")
		}
	}
	if v := getEnv("DOBBY_LOG_LEVEL", ""); v != "" {
		c.Logging.Level = v
	}
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case "anthropic", "claude":
		return getEnv("ANTHROPIC_API_KEY", "")
	case "fireworks":
		return getEnv("FIREWORKS_API_KEY", "")
	case "deepseek":
		return getEnv("DEEPSEEK_API_KEY", "")
	case "openrouter":
		return getEnv("OPENROUTER_API_KEY", "")
	default:
		return getEnv("OPENAI_API_KEY", "")
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func (c *Config) Save() error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0600)
}
