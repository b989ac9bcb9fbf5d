package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider creates a provider backend based on configuration.
// Selection is resolved once, before pipeline construction.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch strings.ToLower(config.Name) {
	case "openai", "":
		return NewOpenAIProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(ctx, config)

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, gemini)", config.Name)
	}
}
