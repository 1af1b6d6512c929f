// Package file provides the TOML configuration file for the advisor.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the typed advisor configuration, stored as TOML.
type Config struct {
	// Language is the default answer language (en, de).
	Language string `toml:"language"`

	// DataDir holds the programme YAML corpus.
	DataDir string `toml:"data_dir"`

	// SessionsDir holds persisted conversation transcripts.
	SessionsDir string `toml:"sessions_dir"`

	// CacheDir holds the response cache database.
	CacheDir string `toml:"cache_dir"`

	// LogFile receives the JSON log stream. Empty disables file logging.
	LogFile string `toml:"log_file"`

	Cache        CacheConfig        `toml:"cache"`
	Retrieval    RetrievalConfig    `toml:"retrieval"`
	Conversation ConversationConfig `toml:"conversation"`
	Embedding    EmbeddingConfig    `toml:"embedding"`
	LLM          LLMConfig          `toml:"llm"`
}

// CacheConfig tunes the response cache.
type CacheConfig struct {
	// Enabled turns the response cache on (default true).
	Enabled bool `toml:"enabled"`

	// Persist turns the SQLite tier on (default true).
	Persist bool `toml:"persist"`

	// TTLSeconds is the default entry lifetime (default 3600).
	TTLSeconds int `toml:"ttl_seconds"`

	// MaxSize caps the in-memory entry count (default 1000).
	MaxSize int `toml:"max_size"`

	// SimilarityThreshold is the semantic hit threshold (default 0.85).
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// SemanticMatching enables the nearest-match scan (default true).
	SemanticMatching bool `toml:"semantic_matching"`
}

// RetrievalConfig tunes programme retrieval.
type RetrievalConfig struct {
	// MinScore is the similarity floor (default 0.1).
	MinScore float64 `toml:"min_score"`

	// MaxResults is how many programmes a generation prompt includes
	// (default 3).
	MaxResults int `toml:"max_results"`
}

// ConversationConfig tunes the conversation context.
type ConversationConfig struct {
	// MaxExchanges bounds the context window (default 5).
	MaxExchanges int `toml:"max_exchanges"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama", "openai" or "none" (default ollama).
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's API base URL.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates against hosted providers. The
	// ADVISOR_OPENAI_API_KEY environment variable takes precedence.
	APIKey string `toml:"api_key"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	// Provider is "gemini" or "ollama" (default gemini).
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's API base URL.
	BaseURL string `toml:"base_url"`

	// Model is the generation model name.
	Model string `toml:"model"`

	// APIKey authenticates against hosted providers. The
	// ADVISOR_GEMINI_API_KEY environment variable takes precedence.
	APIKey string `toml:"api_key"`

	// Institution names the university in the system prompt.
	Institution string `toml:"institution"`

	// MaxTokens caps the generated response length (default 2048).
	MaxTokens int `toml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `toml:"temperature"`
}

// Default returns the configuration defaults, rooted under baseDir (empty
// selects ~/.advisor).
func Default(baseDir string) (*Config, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".advisor")
	}

	return &Config{
		Language:    "en",
		DataDir:     filepath.Join(baseDir, "programs"),
		SessionsDir: filepath.Join(baseDir, "sessions"),
		CacheDir:    filepath.Join(baseDir, "data"),
		LogFile:     filepath.Join(baseDir, "advisor.log"),
		Cache: CacheConfig{
			Enabled:             true,
			Persist:             true,
			TTLSeconds:          3600,
			MaxSize:             1000,
			SimilarityThreshold: 0.85,
			SemanticMatching:    true,
		},
		Retrieval: RetrievalConfig{
			MinScore:   0.1,
			MaxResults: 3,
		},
		Conversation: ConversationConfig{
			MaxExchanges: 5,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Institution: "the university",
		},
	}, nil
}

// Load reads the configuration at path, layering the file over the defaults.
// A missing file returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg, err := Default(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the configuration to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the standard config file location, ~/.advisor/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".advisor", "config.toml"), nil
}

// applyEnvOverrides lets API keys come from the environment so they stay out
// of the config file.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("ADVISOR_GEMINI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("ADVISOR_OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
}
