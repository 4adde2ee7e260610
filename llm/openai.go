package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yt-seo-studio/types"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIBackend serves the structured stages through chat completions with
// a strict json_schema response format.
type OpenAIBackend struct {
	client openai.Client
}

func NewOpenAIBackend(apiKey, baseURL string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIBackend{client: openai.NewClient(opts...)}, nil
}

func (o *OpenAIBackend) Name() string { return "openai" }

func (o *OpenAIBackend) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "seo_payload",
					Schema: strict(req.Schema).ToJSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		}
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	return o.complete(ctx, params)
}

func (o *OpenAIBackend) GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error) {
	if req.WebSearch {
		return "", fmt.Errorf("openai web search: %w", ErrUnsupported)
	}
	return o.complete(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
	})
}

func (o *OpenAIBackend) GenerateImages(ctx context.Context, req ImageRequest) ([]InlineImage, error) {
	return nil, fmt.Errorf("openai images: %w", ErrUnsupported)
}

func (o *OpenAIBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+1)
	for _, h := range req.History {
		switch h.Role {
		case types.RoleModel:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Text))
		default:
			msgs = append(msgs, openai.UserMessage(h.Text))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.Message))

	return o.complete(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: msgs,
	})
}

func (o *OpenAIBackend) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// strict marks every object property as required, as strict mode demands
func strict(s *Schema) *Schema {
	out := &Schema{Type: s.Type}
	if s.Items != nil {
		out.Items = strict(s.Items)
	}
	for _, p := range s.Properties {
		out.Properties = append(out.Properties, Prop(p.Name, strict(p.Schema)))
	}
	if s.Type == TypeObject {
		out.Required = s.StrictRequired()
	}
	return out
}
