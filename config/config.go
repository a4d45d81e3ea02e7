package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the persona RAG tool.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Generate  GenerateConfig  `yaml:"generate"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CorpusConfig describes the transcript corpus and the speaker identity
// mapping used during parsing.
type CorpusConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	// Persona is the canonical identity of the speaker being mimicked.
	Persona string `yaml:"persona"`
	// Aliases maps a canonical speaker identity to its name variants as
	// they appear in transcripts.
	Aliases map[string][]string `yaml:"aliases"`
}

// ChunkConfig holds chunking configuration. All sizes are approximate
// token counts.
type ChunkConfig struct {
	MaxTokens     int `yaml:"max_tokens"`
	MinTokens     int `yaml:"min_tokens"`
	OverlapTokens int `yaml:"overlap_tokens"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`    // "openai", "mock"
	Model      string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv  string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL    string `yaml:"base_url"`
	Dimension  int    `yaml:"dimension"`
	BatchSize  int    `yaml:"batch_size"`
	Workers    int    `yaml:"workers"`
	TimeoutSec int    `yaml:"timeout_sec"` // per embedding call
	MaxRetries int    `yaml:"max_retries"`
	RetryMS    int    `yaml:"retry_ms"` // initial backoff delay
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK          int     `yaml:"top_k"`
	RecencyWeight float64 `yaml:"recency_weight"`
	// MinSimilarity filters chunks whose raw cosine similarity falls
	// below this value (0 = disabled).
	MinSimilarity float64 `yaml:"min_similarity"`
}

// GenerateConfig holds response generation configuration.
type GenerateConfig struct {
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxTokens   int    `yaml:"max_tokens"`
	TokenBudget int    `yaml:"token_budget"` // prompt context budget
	MaxHistory  int    `yaml:"max_history"`  // messages kept per session
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Includes: []string{"**/*.md"},
			Excludes: []string{"**/.personarag/**", "**/node_modules/**", "**/.git/**"},
			Persona:  "Alex",
			Aliases: map[string][]string{
				"Alex": {"Alexey", "Alex Shulga", "Alexey Shulga", "Shulga"},
			},
		},
		Chunk: ChunkConfig{
			MaxTokens:     512,
			MinTokens:     16,
			OverlapTokens: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			APIKeyEnv:  "OPENAI_API_KEY",
			Dimension:  1536,
			BatchSize:  64,
			Workers:    4,
			TimeoutSec: 30,
			MaxRetries: 3,
			RetryMS:    500,
		},
		Retrieve: RetrieveConfig{
			TopK:          5,
			RecencyWeight: 0.1,
			MinSimilarity: 0,
		},
		Generate: GenerateConfig{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   2000,
			TokenBudget: 4000,
			MaxHistory:  50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for personarag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "personarag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".personarag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexPath returns the path to the persisted index.
func IndexPath(dir string) string {
	return filepath.Join(dir, ".personarag", "index.db")
}

// SessionDir returns the directory that stores chat sessions.
func SessionDir(dir string) string {
	return filepath.Join(dir, ".personarag", "sessions")
}

// EnsureDataDir ensures the .personarag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".personarag"), 0755)
}
