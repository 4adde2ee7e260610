package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Call records one request made against a Mock
type Call struct {
	Method string
	Model  string
	Prompt string
}

// Mock is an offline Backend. Nil funcs fall back to canned, schema-valid replies.
type Mock struct {
	JSONFunc     func(ctx context.Context, req JSONRequest) (string, error)
	GroundedFunc func(ctx context.Context, req GroundedRequest) (string, error)
	ImagesFunc   func(ctx context.Context, req ImageRequest) ([]InlineImage, error)
	ChatFunc     func(ctx context.Context, req ChatRequest) (string, error)

	mu    sync.Mutex
	calls []Call
}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

// Calls returns a copy of the recorded requests
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount counts recorded requests for one method
func (m *Mock) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *Mock) record(method, model, prompt string) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Model: model, Prompt: prompt})
	m.mu.Unlock()
}

func (m *Mock) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	m.record("GenerateJSON", req.Model, req.Prompt)
	if m.JSONFunc != nil {
		return m.JSONFunc(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Schema != nil && hasProperty(req.Schema, "primaryKeyword") {
		return mockStrategy(req.Prompt), nil
	}
	return mockContent(req.Prompt), nil
}

func (m *Mock) GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error) {
	m.record("GenerateGrounded", req.Model, req.Prompt)
	if m.GroundedFunc != nil {
		return m.GroundedFunc(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "1. Competitor: a beginner walkthrough with high views\n" +
		"2. Competitor: a listicle of common mistakes\n" +
		"3. Competitor: a long-form case study\n" +
		"Gap: nobody covers the topic with a short, step-by-step format.", nil
}

// mockPNG is a 1x1 transparent PNG
var mockPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (m *Mock) GenerateImages(ctx context.Context, req ImageRequest) ([]InlineImage, error) {
	m.record("GenerateImages", req.Model, req.Prompt)
	if m.ImagesFunc != nil {
		return m.ImagesFunc(ctx, req)
	}
	return []InlineImage{{MIMEType: "image/png", Data: mockPNG}}, nil
}

func (m *Mock) Chat(ctx context.Context, req ChatRequest) (string, error) {
	m.record("Chat", req.Model, req.Message)
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return fmt.Sprintf("You said: %s", req.Message), nil
}

func hasProperty(s *Schema, name string) bool {
	for _, p := range s.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

// mockStrategy derives a keyword from the first words after "Input Data:"
func mockStrategy(prompt string) string {
	input := prompt
	if i := strings.Index(prompt, "Input Data:"); i >= 0 {
		input = prompt[i+len("Input Data:"):]
	}
	words := strings.Fields(strings.ToLower(input))
	if len(words) > 4 {
		words = words[:4]
	}
	keyword := strings.Join(words, " ")
	if keyword == "" {
		keyword = "video"
	}

	out, _ := json.Marshal(map[string]any{
		"primaryKeyword": keyword,
		"secondaryKeywords": []string{
			keyword + " tutorial", keyword + " tips", keyword + " for beginners",
			"how to " + keyword, keyword + " guide",
		},
		"searchIntent": "Informational",
		"hooks": []string{
			"The one mistake everyone makes with " + keyword,
			keyword + " in under ten minutes",
			"What nobody tells you about " + keyword,
		},
		"entities": []string{},
	})
	return string(out)
}

func mockContent(prompt string) string {
	keyword := "video"
	if i := strings.Index(prompt, "{"); i >= 0 {
		if j := strings.Index(prompt[i:], "}"); j >= 0 {
			var s struct {
				PrimaryKeyword string `json:"primaryKeyword"`
			}
			if json.Unmarshal([]byte(prompt[i:i+j+1]), &s) == nil && s.PrimaryKeyword != "" {
				keyword = s.PrimaryKeyword
			}
		}
	}

	var tags []string
	for i := 1; i <= 20; i++ {
		tags = append(tags, fmt.Sprintf("%s %d", keyword, i))
	}
	desc := fmt.Sprintf("%s explained step by step. Learn the essentials of %s and avoid the usual mistakes. "+
		"Subscribe for more and tell us in the comments what you want to see next.", keyword, keyword)

	out, _ := json.Marshal(map[string]any{
		"titles": []string{
			keyword + ": The Complete Beginner Guide You Actually Need",
			keyword + ": Seven Mistakes That Ruin Your Results Fast",
			keyword + ": What Changed This Year and Why It Matters",
		},
		"descriptions":    []string{desc, desc, desc},
		"tags":            tags,
		"hashtags":        []string{"#" + strings.ReplaceAll(keyword, " ", ""), "#howto", "#tutorial"},
		"thumbnailPrompt": "Close-up of a smiling creator holding the subject, rule of thirds composition, warm rim lighting, saturated orange and teal colors, 16:9 aspect ratio",
	})
	return string(out)
}
