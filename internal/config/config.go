// Package config provides configuration loading and structs for the pdfchat assistant.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. One value is built at startup
// and passed explicitly into the session controller and its components.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chat      ChatConfig      `yaml:"chat"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds the optional rotated log file.
type LoggingConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// IngestConfig holds upload and extraction limits.
type IngestConfig struct {
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
	OCRMinChars    int     `yaml:"ocr_min_chars"`
	OCRDPI         float64 `yaml:"ocr_dpi"`
	OCRLanguage    string  `yaml:"ocr_language"`
}

// ChunkingConfig holds segment size and overlap, in tokens.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig selects and configures the embedder.
// Provider is one of "openai", "onnx" or "mock".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	BatchSize  int    `yaml:"batch_size"`
	CacheSize  int    `yaml:"cache_size"`
	// MaxRetries is 0 by default: indexing failures surface to the caller unretried.
	MaxRetries int `yaml:"max_retries"`
}

// LLMConfig configures the OpenAI-compatible chat endpoint. The API key is never read
// from YAML; it comes from the environment variable named by APIKeyEnv.
type LLMConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Temperature       float32 `yaml:"temperature"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryDelayMillis  int     `yaml:"retry_delay_ms"`
	RequestTimeoutSec int     `yaml:"request_timeout_sec"`

	apiKey string
}

// RetrievalConfig holds router and strategy settings.
// Selector is "rules" or "llm".
type RetrievalConfig struct {
	CollectionName   string  `yaml:"collection_name"`
	SimilarityTopK   int     `yaml:"similarity_top_k"`
	KeywordWeight    float64 `yaml:"keyword_weight"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	Selector         string  `yaml:"selector"`
	SummaryGroupSize int     `yaml:"summary_group_chars"`
}

// ChatConfig holds conversation memory settings.
type ChatConfig struct {
	MemoryTokenLimit int `yaml:"memory_token_limit"`
}

// WatchConfig holds the optional inbox directory whose PDFs are uploaded automatically.
type WatchConfig struct {
	Inbox      string   `yaml:"inbox"`
	Extensions []string `yaml:"extensions"`
}

// ErrMissingAPIKey is returned by APIKey when no key is found in the environment.
var ErrMissingAPIKey = errors.New("missing LLM API key")

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// A missing file yields the defaults. Returns an error if the file cannot be parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Logging.File = expandPath(cfg.Logging.File, configDir)
	cfg.Watch.Inbox = expandPath(cfg.Watch.Inbox, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// APIKey returns the LLM API key from the configured environment variable, falling back
// to GOOGLE_API_KEY and OPENAI_API_KEY.
func (c *LLMConfig) APIKey() (string, error) {
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	for _, name := range []string{c.APIKeyEnv, "GOOGLE_API_KEY", "OPENAI_API_KEY"} {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, c.APIKeyEnv)
}

// SetAPIKey overrides the environment lookup. Used by tests and the --api-key flag.
func (c *LLMConfig) SetAPIKey(key string) {
	c.apiKey = key
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" is relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
