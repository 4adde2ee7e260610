package llm

import (
	"context"
	"fmt"

	"yt-seo-studio/config"
)

// New builds the backend named by cfg.Provider
func New(ctx context.Context, cfg config.BackendConfig) (Backend, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.BaseURL)
	case "anthropic":
		return NewAnthropicBackend(cfg.APIKey)
	case "openai":
		return NewOpenAIBackend(cfg.APIKey, cfg.BaseURL)
	case "mock":
		return NewMock(), nil
	}
	return nil, fmt.Errorf("unknown backend provider %q", cfg.Provider)
}
