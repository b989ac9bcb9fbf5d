package model

import "time"

// Config is the full runtime configuration for the pipeline.
type Config struct {
	Provider  ProviderConfig  `yaml:"provider" json:"provider"`
	Corpus    CorpusConfig    `yaml:"corpus" json:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval" json:"retrieval"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// ProviderConfig selects and configures the language-generation provider.
type ProviderConfig struct {
	Name        string        `yaml:"name" json:"name"`   // "openai" or "gemini"
	Model       string        `yaml:"model" json:"model"` // provider-specific model name
	APIKey      string        `yaml:"-" json:"-"`         // never serialized
	BaseURL     string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Temperature float32       `yaml:"temperature" json:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`
	RPS         float64       `yaml:"rps,omitempty" json:"rps,omitempty"` // 0 disables the limiter

	EmbeddingModel string `yaml:"embedding_model" json:"embedding_model"`
	EmbeddingDim   int    `yaml:"embedding_dim" json:"embedding_dim"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
}

// CorpusConfig locates the statutory corpus.
type CorpusConfig struct {
	Path           string `yaml:"path" json:"path"`                       // corpus JSON document
	EmbeddingsPath string `yaml:"embeddings_path" json:"embeddings_path"` // dense-backend sidecar
}

// RetrievalConfig tunes article retrieval.
type RetrievalConfig struct {
	Backend   string  `yaml:"backend" json:"backend"` // "lexical" or "dense"
	TopK      int     `yaml:"top_k" json:"top_k"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Hybrid    bool    `yaml:"hybrid" json:"hybrid"`
}

// CacheConfig controls the completion response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Path    string        `yaml:"path" json:"path"` // persisted key→text mapping
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" json:"verbose"`
	JSON    string `yaml:"json,omitempty" json:"json,omitempty"`
	MD      string `yaml:"md,omitempty" json:"md,omitempty"`
}

// DefaultConfig returns the defaults used when no config file is present.
// The lexical retrieval backend keeps the default setup fully offline.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:           "openai",
			Model:          "gpt-4-turbo-preview",
			Timeout:        60 * time.Second,
			Temperature:    0.3,
			MaxTokens:      2000,
			MaxRetries:     3,
			EmbeddingModel: "text-embedding-3-small",
			EmbeddingDim:   1536,
		},
		Corpus: CorpusConfig{
			Path:           "data/corpus.json",
			EmbeddingsPath: "data/embeddings.json",
		},
		Retrieval: RetrievalConfig{
			Backend:   "lexical",
			TopK:      5,
			Threshold: 0.7,
			Hybrid:    true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "data/llm_cache.json",
			TTL:     30 * 24 * time.Hour,
		},
		Output: OutputConfig{},
	}
}
