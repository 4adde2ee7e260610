package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"yt-seo-studio/assistant"
	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func useTestConfig(t *testing.T) string {
	t.Helper()
	cfg = config.Default()
	cfg.Paths.Output = t.TempDir()
	return cfg.Paths.Output
}

// failingBackend fails every JSON request whose prompt mentions FAIL
type failingBackend struct {
	*llm.Mock
	jsonCalls atomic.Int32
}

func (f *failingBackend) GenerateJSON(ctx context.Context, req llm.JSONRequest) (string, error) {
	f.jsonCalls.Add(1)
	if strings.Contains(req.Prompt, "FAIL") {
		return "", errors.New("quota exceeded")
	}
	return f.Mock.GenerateJSON(ctx, req)
}

func TestRunOnePersistsRun(t *testing.T) {
	output := useTestConfig(t)
	var out strings.Builder

	req := types.PipelineRequest{RawInput: "growing tomatoes in winter indoors", Mode: types.ModeIdea}
	state, err := runOne(context.Background(), llm.NewMock(), req, output, 5*time.Second, &out, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NotNil(t, state.Result)
	assert.Contains(t, state.Research, "Gap:")
	assert.Contains(t, out.String(), "Primary keyword: growing tomatoes in winter")

	dir := filepath.Join(output, state.RunID)
	for _, name := range []string{"request.json", "strategy.json", "content.json", "research.md", "report.md", "report.html", "pipeline_state.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "pipeline_state.json"))
	require.NoError(t, err)
	var saved types.RunState
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, state.RunID, saved.RunID)
	assert.NotEmpty(t, saved.CompletedAt)
	assert.Empty(t, saved.Error)
}

func TestRunOneFailureSavesState(t *testing.T) {
	output := useTestConfig(t)
	backend := &failingBackend{Mock: llm.NewMock()}

	req := types.PipelineRequest{RawInput: "FAIL please", Mode: types.ModeScript}
	state, err := runOne(context.Background(), backend, req, output, time.Second, &strings.Builder{}, zap.NewNop().Sugar())
	require.Error(t, err)
	require.NotNil(t, state)
	assert.Contains(t, state.Error, "quota exceeded")

	dir := filepath.Join(output, state.RunID)
	assert.FileExists(t, filepath.Join(dir, "pipeline_state.json"))
	assert.FileExists(t, filepath.Join(dir, "report.md"))
	assert.NoFileExists(t, filepath.Join(dir, "content.json"))
	assert.Equal(t, int32(1), backend.jsonCalls.Load(), "drafter never runs without a strategy")
}

func TestLoadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- input: "How to grow tomatoes indoors"
  mode: idea
- input: "Full script text"
  context: "Beginner channel"
`), 0644))

	reqs, err := loadBatch(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, types.ModeIdea, reqs[0].Mode)
	assert.Equal(t, types.ModeScript, reqs[1].Mode)
	assert.Equal(t, "Beginner channel", reqs[1].ContextHint)

	require.NoError(t, os.WriteFile(path, []byte("- input: x\n  mode: podcast\n"), 0644))
	_, err = loadBatch(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- mode: IDEA\n"), 0644))
	_, err = loadBatch(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0644))
	_, err = loadBatch(path)
	assert.Error(t, err)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	output := useTestConfig(t)
	reqs := []types.PipelineRequest{
		{RawInput: "tomatoes in winter", Mode: types.ModeIdea},
		{RawInput: "FAIL this one", Mode: types.ModeIdea},
		{RawInput: "peppers on balconies", Mode: types.ModeIdea},
	}
	var out strings.Builder
	err := runBatch(context.Background(), &failingBackend{Mock: llm.NewMock()}, reqs, 2, 0, &out, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Equal(t, "1 of 3 requests failed", err.Error())
	assert.Contains(t, out.String(), "2 of 3 requests succeeded")
	assert.Contains(t, out.String(), "❌ Request 2 failed")

	entries, err := os.ReadDir(output)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestThumbnailPrompt(t *testing.T) {
	p, err := thumbnailPrompt([]string{"a tomato"}, "")
	require.NoError(t, err)
	assert.Equal(t, "a tomato", p)

	_, err = thumbnailPrompt(nil, "")
	assert.Error(t, err)

	dir := t.TempDir()
	content, err := json.Marshal(types.ContentResult{ThumbnailPrompt: "tomato on snow"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.json"), content, 0644))
	p, err = thumbnailPrompt(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, "tomato on snow", p)
}

func TestChatLoop(t *testing.T) {
	a := assistant.New(llm.NewMock(), config.Default(), nil)
	var out strings.Builder
	in := strings.NewReader("hello\n\n/reset\nagain\n/exit\nignored\n")

	require.NoError(t, chatLoop(context.Background(), a, in, &out))
	assert.Contains(t, out.String(), "You said: hello")
	assert.Contains(t, out.String(), "History cleared.")
	assert.NotContains(t, out.String(), "ignored")
	assert.Len(t, a.History(), 2)
}
