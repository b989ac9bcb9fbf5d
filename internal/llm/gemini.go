package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiProvider implements the Provider interface on the Gemini API
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "gemini-embedding-001"
	}
	if config.EmbeddingDim == 0 {
		config.EmbeddingDim = 768
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string { return "gemini" }

// Model returns the active model name
func (p *GeminiProvider) Model() string { return p.config.Model }

// EmbeddingDim returns the embedding vector dimension
func (p *GeminiProvider) EmbeddingDim() int { return p.config.EmbeddingDim }

// Complete requests a text generation
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}}, cfg)
	if err != nil {
		return "", translateGeminiError(err)
	}

	text := strings.TrimSpace(candidateText(resp))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// CompleteStructured requests application/json output and parses it
func (p *GeminiProvider) CompleteStructured(ctx context.Context, prompt, systemPrompt string, temperature float32) (map[string]any, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, cfg)
	if err != nil {
		return nil, translateGeminiError(err)
	}

	text := strings.TrimSpace(candidateText(resp))
	if text == "" {
		return nil, ErrEmptyResponse
	}
	// Some models still wrap JSON mode output in a fence
	text = strings.TrimPrefix(text, "```json")
	text = strings.Trim(text, "`\n ")

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parse structured response: %w", err)
	}
	return parsed, nil
}

// Embed generates an embedding vector for one text
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings; the API has native batch support
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := p.client.Models.EmbedContent(ctx, p.config.EmbeddingModel, contents,
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"})
	if err != nil {
		return nil, translateGeminiError(err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProvider, len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// CountTokens counts tokens through the API
func (p *GeminiProvider) CountTokens(ctx context.Context, text string) (int, error) {
	resp, err := p.client.Models.CountTokens(ctx, p.config.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}}, nil)
	if err != nil {
		return 0, translateGeminiError(err)
	}
	return int(resp.TotalTokens), nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, part := range cand.Content.Parts {
		buf.WriteString(part.Text)
	}
	return buf.String()
}

// translateGeminiError classifies by message text: the SDK does not
// expose stable error types for the free-tier throttling responses.
// RESOURCE_EXHAUSTED and quota messages are terminal, matching the
// Gemini free-tier semantics where waiting a backoff does not help.
func translateGeminiError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "resource exhausted"):
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
}
