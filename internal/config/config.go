// Package config loads and validates the service configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the service configuration
type Config struct {
	Port              int             `json:"port"`
	DataDir           string          `json:"data_dir,omitempty"`
	SnapshotPath      string          `json:"snapshot_path,omitempty"`
	SafetyPhrasesFile string          `json:"safety_phrases_file,omitempty"`
	AI                AIConfig        `json:"ai"`
	Embedding         EmbeddingConfig `json:"embedding"`
	Chunking          ChunkingConfig  `json:"chunking,omitempty"`
	Rescan            RescanConfig    `json:"rescan,omitempty"`
	SSH               SSHServerConfig `json:"ssh,omitempty"`
	Channels          []ChannelConfig `json:"channels,omitempty"`
	Debug             DebugConfig     `json:"debug,omitempty"`
}

// AIConfig contains oracle provider settings
type AIConfig struct {
	DefaultProvider string           `json:"default_provider"`
	Providers       []ProviderConfig `json:"providers"`
}

// ProviderConfig contains settings for a specific oracle provider
type ProviderConfig struct {
	Name   string `json:"name"`
	Type   string `json:"type"`              // "ollama", "openai"
	APIKey string `json:"api_key,omitempty"` // Supports ${ENV_VAR} expansion
	Host   string `json:"host,omitempty"`    // Ollama host, default http://localhost:11434
	Model  string `json:"model"`
}

// EmbeddingConfig selects the embedding backend for the vector index.
type EmbeddingConfig struct {
	Provider string `json:"provider,omitempty"` // "tfidf" (default), "openai", "ollama"
	Dims     int    `json:"dims,omitempty"`     // Max vocabulary for tfidf, fixed dims otherwise
	APIKey   string `json:"api_key,omitempty"`  // Supports ${ENV_VAR} expansion
	Host     string `json:"host,omitempty"`     // Ollama host
	Model    string `json:"model,omitempty"`
}

// ChunkingConfig controls document splitting before indexing.
type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size,omitempty"`    // Max characters per chunk (default 500)
	ChunkOverlap int `json:"chunk_overlap,omitempty"` // Overlap carried between chunks (default 50)
}

// RescanConfig controls periodic re-scanning of the data directory.
type RescanConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"` // Cron expression, default every 10 minutes
}

// SSHServerConfig holds configuration for the integrated SSH server
type SSHServerConfig struct {
	Enabled            bool   `json:"enabled"`
	ListenAddr         string `json:"listen_addr,omitempty"`
	HostKeyPath        string `json:"host_key_path,omitempty"`
	AuthorizedKeysPath string `json:"authorized_keys_path,omitempty"`
}

// ChannelConfig contains settings for channel adapters
type ChannelConfig struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Enabled bool              `json:"enabled"`
	Config  map[string]string `json:"config"`
}

// DebugConfig contains debugging and logging settings
type DebugConfig struct {
	LogQueryContent bool `json:"log_query_content,omitempty"` // Enable logging of query text (privacy risk!)
	VerboseLogging  bool `json:"verbose_logging,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Port:         8000,
		DataDir:      "./data",
		SnapshotPath: "index.db",
		AI: AIConfig{
			DefaultProvider: "ollama",
			Providers: []ProviderConfig{
				{
					Name:  "ollama",
					Type:  "ollama",
					Host:  "http://localhost:11434",
					Model: "llama3.1",
				},
				{
					Name:   "openai",
					Type:   "openai",
					APIKey: "${OPENAI_API_KEY}",
					Model:  "gpt-4o-mini",
				},
			},
		},
		Embedding: EmbeddingConfig{
			Provider: "tfidf",
		},
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Rescan: RescanConfig{
			Enabled:  true,
			Schedule: "@every 10m",
		},
		Channels: []ChannelConfig{
			{
				Name:    "telegram",
				Type:    "telegram",
				Enabled: false,
				Config: map[string]string{
					"bot_token": "${TELEGRAM_BOT_TOKEN}",
				},
			},
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Check if file exists, create default if not
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		fmt.Printf("Created default configuration at %s\n", path)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandTilde()
	cfg.expandEnvVars()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandEnvVars expands ${ENV_VAR} placeholders in configuration values
func (c *Config) expandEnvVars() {
	c.DataDir = os.ExpandEnv(c.DataDir)
	c.SnapshotPath = os.ExpandEnv(c.SnapshotPath)
	c.SafetyPhrasesFile = os.ExpandEnv(c.SafetyPhrasesFile)

	for i := range c.AI.Providers {
		c.AI.Providers[i].APIKey = os.ExpandEnv(c.AI.Providers[i].APIKey)
		c.AI.Providers[i].Host = os.ExpandEnv(c.AI.Providers[i].Host)
	}

	c.Embedding.APIKey = os.ExpandEnv(c.Embedding.APIKey)
	c.Embedding.Host = os.ExpandEnv(c.Embedding.Host)

	for i := range c.Channels {
		for key, value := range c.Channels[i].Config {
			c.Channels[i].Config[key] = os.ExpandEnv(value)
		}
	}
}

// expandTilde replaces a leading "~/" with the user's home directory in
// path-valued config fields. Called before env-var expansion so that
// both "~/foo" and "${SOME_PATH}" work.
func (c *Config) expandTilde() {
	home, err := os.UserHomeDir()
	if err != nil {
		return // can't expand, leave as-is
	}
	expand := func(p string) string {
		if p == "~" {
			return home
		}
		if strings.HasPrefix(p, "~/") {
			return filepath.Join(home, p[2:])
		}
		return p
	}

	c.DataDir = expand(c.DataDir)
	c.SnapshotPath = expand(c.SnapshotPath)
	c.SafetyPhrasesFile = expand(c.SafetyPhrasesFile)
	c.SSH.HostKeyPath = expand(c.SSH.HostKeyPath)
	c.SSH.AuthorizedKeysPath = expand(c.SSH.AuthorizedKeysPath)
}

// applyDefaults fills in zero-valued fields that have sensible defaults.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "tfidf"
	}
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 500
	}
	if c.Chunking.ChunkOverlap == 0 {
		c.Chunking.ChunkOverlap = 50
	}
	if c.Rescan.Enabled && c.Rescan.Schedule == "" {
		c.Rescan.Schedule = "@every 10m"
	}
	if c.SSH.Enabled && c.SSH.ListenAddr == "" {
		c.SSH.ListenAddr = ":2222"
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.AI.DefaultProvider == "" {
		return fmt.Errorf("ai.default_provider must be set")
	}
	if _, err := c.Provider(c.AI.DefaultProvider); err != nil {
		return err
	}

	for _, p := range c.AI.Providers {
		switch p.Type {
		case "ollama", "openai":
		default:
			return fmt.Errorf("unknown provider type %q for provider %q", p.Type, p.Name)
		}
		if p.Type == "openai" && p.APIKey == "" {
			return fmt.Errorf("provider %q requires an api_key", p.Name)
		}
	}

	switch c.Embedding.Provider {
	case "tfidf", "ollama":
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding provider openai requires an api_key")
		}
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}

	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}

	for _, ch := range c.Channels {
		if !ch.Enabled {
			continue
		}
		if ch.Type == "telegram" && ch.Config["bot_token"] == "" {
			return fmt.Errorf("channel %q requires a bot_token", ch.Name)
		}
	}

	return nil
}

// Provider returns the provider config with the given name.
func (c *Config) Provider(name string) (*ProviderConfig, error) {
	for i := range c.AI.Providers {
		if c.AI.Providers[i].Name == name {
			return &c.AI.Providers[i], nil
		}
	}
	return nil, fmt.Errorf("provider %q not found in ai.providers", name)
}
