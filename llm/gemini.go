package llm

import (
	"context"
	"fmt"
	"strings"

	"yt-seo-studio/types"

	"google.golang.org/genai"
)

// GeminiBackend talks to the Gemini API through the official genai SDK
type GeminiBackend struct {
	client *genai.Client
}

// NewGeminiBackend creates a client for the Gemini developer API
func NewGeminiBackend(ctx context.Context, apiKey, baseURL string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiBackend{client: client}, nil
}

func (g *GeminiBackend) Name() string { return "gemini" }

func (g *GeminiBackend) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Schema != nil {
		cfg.ResponseSchema = toGenAISchema(req.Schema)
	}
	if req.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(req.ThinkingBudget)),
		}
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *GeminiBackend) GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini grounded generate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *GeminiBackend) GenerateImages(ctx context.Context, req ImageRequest) ([]InlineImage, error) {
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   string(req.Size),
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini image generate: %w", err)
	}

	var images []InlineImage
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return images, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		images = append(images, InlineImage{
			MIMEType: part.InlineData.MIMEType,
			Data:     part.InlineData.Data,
		})
	}
	return images, nil
}

func (g *GeminiBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == types.RoleModel {
			role = genai.Role(genai.RoleModel)
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.Role(genai.RoleUser)))

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return resp.Text(), nil
}

func toGenAISchema(s *Schema) *genai.Schema {
	out := &genai.Schema{}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = toGenAISchema(p.Schema)
			out.PropertyOrdering = append(out.PropertyOrdering, p.Name)
		}
		out.Required = s.Required
	case TypeArray:
		out.Type = genai.TypeArray
		if s.Items != nil {
			out.Items = toGenAISchema(s.Items)
		}
	default:
		out.Type = genai.TypeString
	}
	return out
}
