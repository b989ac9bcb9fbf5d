package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmirzaei/mizan/internal/cache"
)

// defaultMaxRetries is the retry ceiling for completions and embeddings.
const defaultMaxRetries = 3

// Client wraps a Provider with the response cache, the retry policy and
// an optional requests-per-second limiter. All pipeline stages talk to
// the provider through a Client, never directly.
type Client struct {
	provider    Provider
	cache       cache.Cache // nil disables caching
	cacheTTL    time.Duration
	maxRetries  int
	limiter     *rate.Limiter // nil disables rate limiting
	backoffUnit time.Duration // scaled down in tests
	temperature float32
	maxTokens   int
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithCache attaches a response cache for plain completions
func WithCache(c cache.Cache, ttl time.Duration) ClientOption {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithMaxRetries overrides the retry ceiling
func WithMaxRetries(n int) ClientOption {
	return func(cl *Client) {
		if n > 0 {
			cl.maxRetries = n
		}
	}
}

// WithRPS enables a requests-per-second limiter on provider calls
func WithRPS(rps float64) ClientOption {
	return func(cl *Client) {
		if rps > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithDefaults sets the fallback sampling parameters
func WithDefaults(temperature float32, maxTokens int) ClientOption {
	return func(cl *Client) {
		cl.temperature = temperature
		cl.maxTokens = maxTokens
	}
}

// withBackoffUnit shrinks retry sleeps; only for tests.
func withBackoffUnit(d time.Duration) ClientOption {
	return func(cl *Client) { cl.backoffUnit = d }
}

// NewClient creates a Client around a provider backend
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:    provider,
		maxRetries:  defaultMaxRetries,
		backoffUnit: time.Second,
		temperature: 0.3,
		maxTokens:   2000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider identifier
func (c *Client) Name() string { return c.provider.Name() }

// Model returns the active model name
func (c *Client) Model() string { return c.provider.Model() }

// EmbeddingDim returns the embedding vector dimension
func (c *Client) EmbeddingDim() int { return c.provider.EmbeddingDim() }

// Complete returns generated text, consulting the response cache before
// calling the provider and writing through on success.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.SystemPrompt == "" {
		req.SystemPrompt = DefaultSystemPrompt
	}
	if req.Temperature < 0 {
		req.Temperature = c.temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.maxTokens
	}

	key := c.cacheKey(req)
	if c.cache != nil {
		if cached, found := c.cache.Get(key); found {
			return string(cached), nil
		}
	}

	text, err := retry(ctx, c, func() (string, error) {
		return c.provider.Complete(ctx, req)
	})
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		_ = c.cache.Set(key, []byte(text), c.cacheTTL)
	}
	return text, nil
}

// CompleteStructured returns a parsed JSON object. Structured calls are
// never retried and never cached: a single parse or API failure is
// surfaced immediately.
func (c *Client) CompleteStructured(ctx context.Context, prompt, systemPrompt string, temperature float32) (map[string]any, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.provider.CompleteStructured(ctx, prompt, systemPrompt, temperature)
}

// Embed generates one embedding vector with the retry policy applied
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	return retry(ctx, c, func() ([]float32, error) {
		return c.provider.Embed(ctx, text)
	})
}

// EmbedBatch generates embeddings with the retry policy applied
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return retry(ctx, c, func() ([][]float32, error) {
		return c.provider.EmbedBatch(ctx, texts)
	})
}

// CountTokens counts tokens in text
func (c *Client) CountTokens(ctx context.Context, text string) (int, error) {
	return c.provider.CountTokens(ctx, text)
}

// cacheKey hashes the full call identity so switching provider or model
// misses the old entries instead of reusing them.
func (c *Client) cacheKey(req CompletionRequest) string {
	material := fmt.Sprintf("%s_%s_%s_%.2f_%d",
		c.provider.Name(), c.provider.Model(), req.Prompt, req.Temperature, req.MaxTokens)
	return cache.Key(material)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retry executes fn under the retry policy:
//   - rate limit: wait 2^attempt+1 units, retry up to the ceiling
//   - quota exhaustion: terminal, surfaced immediately
//   - generic provider error: wait 2^attempt units, retry up to the ceiling
//   - anything else: surfaced immediately, no retry
func retry[T any](ctx context.Context, c *Client, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.wait(ctx); err != nil {
			return zero, err
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, ErrQuotaExhausted):
			return zero, err

		case errors.Is(err, ErrRateLimited):
			if err := c.sleep(ctx, time.Duration(1<<attempt+1)*c.backoffUnit); err != nil {
				return zero, err
			}

		case errors.Is(err, ErrProvider):
			if attempt == c.maxRetries-1 {
				return zero, err
			}
			if err := c.sleep(ctx, time.Duration(1<<attempt)*c.backoffUnit); err != nil {
				return zero, err
			}

		default:
			return zero, err
		}
	}
	return zero, lastErr
}
