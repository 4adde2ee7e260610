package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"yt-seo-studio/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestParseImageSize(t *testing.T) {
	for _, in := range []string{"1K", "1k", " 2K ", "4k"} {
		_, err := ParseImageSize(in)
		assert.NoError(t, err, in)
	}
	size, err := ParseImageSize("2k")
	require.NoError(t, err)
	assert.Equal(t, Size2K, size)

	_, err = ParseImageSize("8K")
	assert.Error(t, err)
	_, err = ParseImageSize("")
	assert.Error(t, err)
}

func TestSchemaToJSONSchema(t *testing.T) {
	s := Object([]string{"name"},
		Prop("name", String()),
		Prop("tags", StringArray()),
	)

	doc := s.ToJSONSchema()
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, false, doc["additionalProperties"])
	assert.Equal(t, []string{"name"}, doc["required"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	tags, ok := props["tags"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", tags["type"])
	assert.Equal(t, map[string]any{"type": "string"}, tags["items"])

	// must survive a JSON round trip for providers taking a schema string
	_, err := json.Marshal(doc)
	assert.NoError(t, err)
}

func TestStrictRequiresEveryProperty(t *testing.T) {
	s := Object([]string{"a"}, Prop("a", String()), Prop("b", StringArray()))
	assert.Equal(t, []string{"a", "b"}, s.StrictRequired())
	assert.Equal(t, []string{"a", "b"}, strict(s).Required)
	assert.Equal(t, []string{"a"}, s.Required, "original schema untouched")
}

func TestMockDefaults(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	raw, err := m.GenerateJSON(ctx, JSONRequest{
		Prompt: "Analyze...\nInput Data:\nGrowing tomatoes in winter is easy",
		Schema: Object(nil, Prop("primaryKeyword", String())),
	})
	require.NoError(t, err)

	var strat struct {
		PrimaryKeyword string   `json:"primaryKeyword"`
		Hooks          []string `json:"hooks"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &strat))
	assert.Equal(t, "growing tomatoes in winter", strat.PrimaryKeyword)
	assert.Len(t, strat.Hooks, 3)

	raw, err = m.GenerateJSON(ctx, JSONRequest{
		Prompt: `strategy: {"primaryKeyword":"winter tomatoes"}`,
		Schema: Object(nil, Prop("titles", StringArray())),
	})
	require.NoError(t, err)
	var content struct {
		Titles []string `json:"titles"`
		Tags   []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &content))
	assert.Len(t, content.Titles, 3)
	assert.Len(t, content.Tags, 20)
	assert.Contains(t, content.Titles[0], "winter tomatoes")

	imgs, err := m.GenerateImages(ctx, ImageRequest{Prompt: "x"})
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, "image/png", imgs[0].MIMEType)

	assert.Equal(t, 2, m.CallCount("GenerateJSON"))
	assert.Equal(t, 1, m.CallCount("GenerateImages"))
}

func TestMockOverrides(t *testing.T) {
	boom := errors.New("boom")
	m := &Mock{
		GroundedFunc: func(ctx context.Context, req GroundedRequest) (string, error) {
			return "", boom
		},
	}
	_, err := m.GenerateGrounded(context.Background(), GroundedRequest{Prompt: "q", WebSearch: true})
	assert.ErrorIs(t, err, boom)
	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "q", calls[0].Prompt)
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	b, err := New(ctx, config.BackendConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", b.Name())

	_, err = New(ctx, config.BackendConfig{Provider: "anthropic"})
	assert.Error(t, err, "missing key")

	b, err = New(ctx, config.BackendConfig{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	_, err = b.GenerateImages(ctx, ImageRequest{})
	assert.ErrorIs(t, err, ErrUnsupported)

	b, err = New(ctx, config.BackendConfig{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	_, err = b.GenerateGrounded(ctx, GroundedRequest{WebSearch: true})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = New(ctx, config.BackendConfig{Provider: "nope"})
	assert.Error(t, err)
}
