package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"

	"github.com/mmirzaei/mizan/internal/util"
)

// embedBatchSize is the OpenAI per-request input limit.
const embedBatchSize = 100

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config

	// tiktoken downloads the BPE vocabulary on a cold cache, so the
	// encoding loads lazily on the first CountTokens call. Construction
	// stays network-free.
	encOnce  sync.Once
	encoding *tiktoken.Tiktoken
	encErr   error
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = "gpt-4-turbo-preview"
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "text-embedding-3-small"
	}
	if config.EmbeddingDim == 0 {
		config.EmbeddingDim = 1536
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string { return "openai" }

// Model returns the active model name
func (p *OpenAIProvider) Model() string { return p.config.Model }

// EmbeddingDim returns the embedding vector dimension
func (p *OpenAIProvider) EmbeddingDim() int { return p.config.EmbeddingDim }

// Complete requests a chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", translateOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// CompleteStructured requests a completion in JSON mode and parses it
func (p *OpenAIProvider) CompleteStructured(ctx context.Context, prompt, systemPrompt string, temperature float32) (map[string]any, error) {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	if systemPrompt == "" {
		systemPrompt = "شما باید خروجی را به صورت JSON معتبر ارائه دهید."
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, translateOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse structured response: %w", err)
	}
	return parsed, nil
}

// Embed generates an embedding vector for one text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings, batching at the API input limit
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	var all [][]float32
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		})
		if err != nil {
			return nil, translateOpenAIError(err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProvider, end-start, len(resp.Data))
		}
		for _, d := range resp.Data {
			all = append(all, d.Embedding)
		}
	}
	return all, nil
}

// CountTokens counts tokens locally with tiktoken
func (p *OpenAIProvider) CountTokens(_ context.Context, text string) (int, error) {
	p.encOnce.Do(func() {
		encoding, err := tiktoken.EncodingForModel(p.config.Model)
		if err != nil {
			// Unknown model names fall back to the GPT-4 encoding
			encoding, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err != nil {
			p.encErr = fmt.Errorf("load tokenizer: %w", err)
			return
		}
		p.encoding = encoding
	})
	if p.encErr != nil {
		return 0, p.encErr
	}
	return len(p.encoding.Encode(text, nil, nil)), nil
}

func (p *OpenAIProvider) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// translateOpenAIError maps SDK failures onto the retry-policy errors.
// 429 with a quota message is terminal; other 429s are transient; any
// other APIError is a generic, retryable provider failure.
func translateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		msg := strings.ToLower(apiErr.Message + " " + fmt.Sprint(apiErr.Code))
		if strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
			return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		}
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
