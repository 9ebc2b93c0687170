package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimiterConfig configures the HTTP rate limiting middleware.
type RateLimiterConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Algorithm string  `yaml:"algorithm"` // "tokenBucket" or "fixedWindow"
	Rate      float64 `yaml:"rate"`      // tokens per second (tokenBucket)
	Capacity  int     `yaml:"capacity"`  // burst size (tokenBucket)
	Limit     int     `yaml:"limit"`     // requests per window (fixedWindow)
	Window    string  `yaml:"window"`    // window duration (fixedWindow)
}

// CircuitBreakerConfig configures the circuit breaker used for upstream calls.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Address     string            `yaml:"address"`
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// TranscriptConfig configures the transcript source collaborator.
type TranscriptConfig struct {
	BaseURL        string               `yaml:"baseURL"`
	Language       string               `yaml:"language"`
	Timeout        string               `yaml:"timeout"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// ProviderConfig configures a remote model provider (embedding or LLM).
type ProviderConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseURL"`
	Timeout  string `yaml:"timeout"`
}

// StoreConfig configures the on-disk chunk store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// GenerationConfig fixes the sampling parameters for one call site.
type GenerationConfig struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// RAGConfig configures segmentation, retrieval and generation budgets.
type RAGConfig struct {
	ChunkSize    int              `yaml:"chunkSize"`
	ChunkOverlap int              `yaml:"chunkOverlap"`
	TopK         int              `yaml:"topK"`
	Summary      GenerationConfig `yaml:"summary"`
	Chat         GenerationConfig `yaml:"chat"`
}

// ScannerConfig declares one scanner in a guard chain. Fields beyond Type
// are scanner-specific and ignored by scanners that do not use them.
type ScannerConfig struct {
	Type       string   `yaml:"type"`
	Substrings []string `yaml:"substrings,omitempty"`
	Patterns   []string `yaml:"patterns,omitempty"`
	Allowed    []string `yaml:"allowed,omitempty"`
	Threshold  float64  `yaml:"threshold,omitempty"`
	Hosts      []string `yaml:"hosts,omitempty"`
}

// GuardConfig declares the ordered input and output scanner chains.
type GuardConfig struct {
	Input  []ScannerConfig `yaml:"input"`
	Output []ScannerConfig `yaml:"output"`
}

// AppConfig is the root configuration, passed explicitly into constructors.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Embedding  ProviderConfig   `yaml:"embedding"`
	LLM        ProviderConfig   `yaml:"llm"`
	Store      StoreConfig      `yaml:"store"`
	RAG        RAGConfig        `yaml:"rag"`
	Guard      GuardConfig      `yaml:"guard"`
}

// Load reads and parses the yaml configuration file at path.
// Environment references like ${OPENAI_API_KEY} are expanded before parsing
// so secrets never have to live in the file itself.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a configuration with the defaults mirrored from the
// original deployment. A missing config file section keeps these values.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Address: ":8000",
			RateLimiter: RateLimiterConfig{
				Enabled:   false,
				Algorithm: "tokenBucket",
				Rate:      20,
				Capacity:  40,
			},
		},
		Transcript: TranscriptConfig{
			BaseURL:  "https://video.google.com/timedtext",
			Language: "en",
			Timeout:  "30s",
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 2,
				Timeout:          "30s",
			},
		},
		Embedding: ProviderConfig{
			Provider: "openai",
			Model:    "text-embedding-ada-002",
			Timeout:  "30s",
		},
		LLM: ProviderConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  "60s",
		},
		Store: StoreConfig{
			Path: ".youassist/chunks.db",
		},
		RAG: RAGConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
			TopK:         3,
			Summary:      GenerationConfig{Temperature: 0.7, MaxTokens: 200},
			Chat:         GenerationConfig{Temperature: 0.7, MaxTokens: 150},
		},
		Guard: GuardConfig{
			Input: []ScannerConfig{
				{Type: "prompt_injection"},
				{Type: "ban_substrings", Substrings: []string{"hack", "leak", "cheat"}},
				{Type: "toxicity", Threshold: 0.5},
				{Type: "regex"},
				{Type: "language", Allowed: []string{"en"}},
			},
			Output: []ScannerConfig{
				{Type: "toxicity", Threshold: 0.5},
				{Type: "bias"},
				{Type: "malicious_urls"},
				{Type: "no_refusal"},
			},
		},
	}
}

// ParseDuration parses a duration string from the config, falling back to
// the given default when the field is empty.
func ParseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}
