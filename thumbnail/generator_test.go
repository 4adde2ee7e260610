package thumbnail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var got llm.ImageRequest
	m := &llm.Mock{ImagesFunc: func(ctx context.Context, req llm.ImageRequest) ([]llm.InlineImage, error) {
		got = req
		return []llm.InlineImage{
			{MIMEType: "image/png", Data: []byte("png-bytes")},
			{MIMEType: "image/jpeg", Data: []byte("jpg-bytes")},
		}, nil
	}}
	g := New(m, config.Default(), nil)

	images, err := g.Generate(context.Background(), "  A tomato on snow, 16:9 ", "2k")
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "16:9", got.AspectRatio)
	assert.Equal(t, llm.Size2K, got.Size)
	assert.Equal(t, "gemini-3-pro-image-preview", got.Model)
	assert.Equal(t, "A tomato on snow, 16:9", images[0].Prompt)
	assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", images[0].DataURL)
}

func TestGenerateDefaultSize(t *testing.T) {
	var got llm.ImageRequest
	m := &llm.Mock{ImagesFunc: func(ctx context.Context, req llm.ImageRequest) ([]llm.InlineImage, error) {
		got = req
		return []llm.InlineImage{{MIMEType: "image/png", Data: []byte{1}}}, nil
	}}
	_, err := New(m, config.Default(), nil).Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, llm.Size1K, got.Size)
}

func TestGenerateErrors(t *testing.T) {
	g := New(llm.NewMock(), config.Default(), nil)

	_, err := g.Generate(context.Background(), " ", "1K")
	assert.Equal(t, types.KindInvalidInput, types.KindOf(err))

	_, err = g.Generate(context.Background(), "prompt", "8K")
	assert.Equal(t, types.KindInvalidInput, types.KindOf(err))

	empty := &llm.Mock{ImagesFunc: func(ctx context.Context, req llm.ImageRequest) ([]llm.InlineImage, error) {
		return nil, nil
	}}
	_, err = New(empty, config.Default(), nil).Generate(context.Background(), "prompt", "1K")
	assert.Equal(t, types.KindGeneration, types.KindOf(err))
	assert.Equal(t, types.StageThumbnail, types.StageOf(err))

	failing := &llm.Mock{ImagesFunc: func(ctx context.Context, req llm.ImageRequest) ([]llm.InlineImage, error) {
		return nil, errors.New("safety filter")
	}}
	_, err = New(failing, config.Default(), nil).Generate(context.Background(), "prompt", "1K")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safety filter")
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "thumbs")
	paths, err := Save(dir, []types.GeneratedImage{
		{MIMEType: "image/png", Data: []byte("a")},
		{MIMEType: "image/jpeg", Data: []byte("b")},
		{MIMEType: "application/octet-stream", Data: []byte("c")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "thumbnail_1.png"),
		filepath.Join(dir, "thumbnail_2.jpg"),
		filepath.Join(dir, "thumbnail_3.bin"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 60))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	got := truncate("Überraschung: Tomaten im Winter", 1)
	assert.Equal(t, "Ü...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "東京の...", truncate("東京の冬野菜", 3))
}
