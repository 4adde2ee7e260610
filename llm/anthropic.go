package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	lktypes "github.com/aktagon/llmkit/anthropic/types"
)

const anthropicMaxTokens = 8000

// AnthropicBackend serves the structured stages through llmkit.
// It has no web search or image generation.
type AnthropicBackend struct {
	apiKey string
}

func NewAnthropicBackend(apiKey string) (*AnthropicBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key missing; set ANTHROPIC_API_KEY")
	}
	return &AnthropicBackend{apiKey: apiKey}, nil
}

func (a *AnthropicBackend) Name() string { return "anthropic" }

func (a *AnthropicBackend) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	schema := ""
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema.ToJSONSchema())
		if err != nil {
			return "", fmt.Errorf("marshal schema: %w", err)
		}
		schema = string(raw)
	}

	settings := lktypes.RequestSettings{
		Model:     req.Model,
		MaxTokens: anthropicMaxTokens,
	}
	if req.Temperature != nil {
		settings.Temperature = *req.Temperature
	}

	system := "You are an expert YouTube SEO strategist. Respond with JSON only."
	return a.prompt(ctx, system, req.Prompt, schema, settings)
}

func (a *AnthropicBackend) GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error) {
	if req.WebSearch {
		return "", fmt.Errorf("anthropic web search: %w", ErrUnsupported)
	}
	settings := lktypes.RequestSettings{Model: req.Model, MaxTokens: anthropicMaxTokens}
	return a.prompt(ctx, "", req.Prompt, "", settings)
}

func (a *AnthropicBackend) GenerateImages(ctx context.Context, req ImageRequest) ([]InlineImage, error) {
	return nil, fmt.Errorf("anthropic images: %w", ErrUnsupported)
}

func (a *AnthropicBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	var sb strings.Builder
	for _, m := range req.History {
		sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Text))
	}
	sb.WriteString("user: " + req.Message)

	settings := lktypes.RequestSettings{Model: req.Model, MaxTokens: anthropicMaxTokens}
	system := "You are a helpful assistant for YouTube creators. Continue the conversation as the model."
	return a.prompt(ctx, system, sb.String(), "", settings)
}

// prompt runs the blocking llmkit call so ctx deadlines still end the wait
func (a *AnthropicBackend) prompt(ctx context.Context, system, user, schema string, settings lktypes.RequestSettings) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		response, err := anthropic.PromptWithSettings(system, user, schema, a.apiKey, settings)
		if err != nil {
			done <- result{err: fmt.Errorf("anthropic prompt: %w", err)}
			return
		}
		if len(response.Content) == 0 {
			done <- result{}
			return
		}
		done <- result{text: strings.TrimSpace(response.Content[0].Text)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}
