package llm

import (
	"context"
	"errors"
	"time"

	"github.com/mmirzaei/mizan/internal/model"
)

// Sentinel errors used by the retry policy. Providers translate SDK
// failures into these so the caller can decide what is worth retrying.
var (
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("llm: empty response")

	// ErrRateLimited is transient; retried with exponential backoff.
	ErrRateLimited = errors.New("llm: rate limited")

	// ErrQuotaExhausted is terminal for the call; waiting cannot help.
	ErrQuotaExhausted = errors.New("llm: quota exhausted")

	// ErrProvider is a generic API failure, retried up to the ceiling.
	ErrProvider = errors.New("llm: provider error")
)

// DefaultSystemPrompt frames every completion as Iranian-law legal
// analysis unless the caller supplies its own system prompt.
const DefaultSystemPrompt = "شما یک قاضی باتجربه و متخصص حقوق مدنی ایران هستید. " +
	"تحلیل‌های خود را دقیق، مستند و بر اساس مواد قانون مدنی ارائه دهید و به فارسی پاسخ دهید."

// CompletionRequest is the input of a plain text completion.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string  // empty selects DefaultSystemPrompt
	Temperature  float32 // <0 selects the configured default
	MaxTokens    int     // 0 selects the configured default
}

// Provider is the language-generation capability contract. Each backend
// implements raw calls only; caching, retries and rate limiting live in
// Client so they behave identically across providers.
type Provider interface {
	// Name returns the provider identifier, e.g. "openai" or "gemini"
	Name() string

	// Model returns the active model name
	Model() string

	// EmbeddingDim returns the embedding vector dimension
	EmbeddingDim() int

	// Complete returns generated text, or ErrEmptyResponse when the
	// provider produced none
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// CompleteStructured returns a parsed JSON object
	CompleteStructured(ctx context.Context, prompt, systemPrompt string, temperature float32) (map[string]any, error)

	// Embed generates an embedding vector for one text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// CountTokens counts tokens in text
	CountTokens(ctx context.Context, text string) (int, error)
}

// Config holds provider configuration
type Config struct {
	// Name selects the backend: "openai" or "gemini"
	Name string

	// Model name (provider-specific; empty picks the backend default)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints (tests, proxies)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// Temperature is the default sampling temperature
	Temperature float32

	// MaxTokens is the default response budget
	MaxTokens int

	// EmbeddingModel and EmbeddingDim configure the embedding endpoint
	EmbeddingModel string
	EmbeddingDim   int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// ConfigFromModel converts the pipeline-level provider section.
func ConfigFromModel(mc model.ProviderConfig) Config {
	return Config{
		Name:           mc.Name,
		Model:          mc.Model,
		APIKey:         mc.APIKey,
		BaseURL:        mc.BaseURL,
		Timeout:        mc.Timeout,
		Temperature:    mc.Temperature,
		MaxTokens:      mc.MaxTokens,
		EmbeddingModel: mc.EmbeddingModel,
		EmbeddingDim:   mc.EmbeddingDim,
		HTTPProxy:      mc.HTTPProxy,
		HTTPSProxy:     mc.HTTPSProxy,
	}
}
