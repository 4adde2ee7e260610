package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"SEO_PROVIDER", "GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "YOUTUBE_API_KEY", "YOUTUBE_ACCESS_TOKEN"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Backend.Provider)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Models.Strategy)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Models.Draft)
	assert.Equal(t, 16000, cfg.Strategy.ThinkingBudget)
	assert.Equal(t, 20000, cfg.Limits.StrategyInputChars)
	assert.Equal(t, 1000, cfg.Limits.DraftExcerptChars)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Strategy)
	assert.Equal(t, "16:9", cfg.Image.AspectRatio)
	assert.True(t, cfg.Draft.Lint)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `backend:
  provider: OpenAI
models:
  draft: gpt-4o-mini
limits:
  draft_excerpt_chars: 500
timeouts:
  draft: 15s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Backend.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Models.Draft)
	assert.Equal(t, "gpt-4o", cfg.Models.Strategy, "unset slots use the provider's models")
	assert.Equal(t, 500, cfg.Limits.DraftExcerptChars)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Draft)
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  provider: llama\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Run("gemini key from GEMINI_API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := Default()
		assert.Equal(t, "g-key", cfg.Backend.APIKey)
	})

	t.Run("API_KEY fallback", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_KEY", "legacy")

		cfg := Default()
		assert.Equal(t, "legacy", cfg.Backend.APIKey)
	})

	t.Run("provider switch picks provider key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SEO_PROVIDER", "anthropic")
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := Default()
		assert.Equal(t, "anthropic", cfg.Backend.Provider)
		assert.Equal(t, "ant-key", cfg.Backend.APIKey)
	})

	t.Run("youtube credentials", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("YOUTUBE_API_KEY", "yt-key")
		t.Setenv("YOUTUBE_ACCESS_TOKEN", "ya29.token")

		cfg := Default()
		assert.Equal(t, "yt-key", cfg.YouTube.APIKey)
		assert.Equal(t, "ya29.token", cfg.YouTube.AccessToken)
	})
}

func TestValidate_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini", cfg.Backend.Provider)
	assert.Equal(t, 60*time.Second, cfg.Timeouts.Research)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "output", cfg.Paths.Output)
}

func TestUseProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Backend.APIKey)

	require.NoError(t, cfg.UseProvider("OpenAI"))
	assert.Equal(t, "openai", cfg.Backend.Provider)
	assert.Equal(t, "o-key", cfg.Backend.APIKey)
	assert.Equal(t, DefaultModels("openai"), cfg.Models)

	assert.Error(t, cfg.UseProvider("llama"))
	assert.Equal(t, "openai", cfg.Backend.Provider)
}

func TestUseProviderSwitchesDefaultModels(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  chat: my-tuned-chat\n"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Models.Strategy)

	require.NoError(t, cfg.UseProvider("anthropic"))
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Models.Strategy)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Models.Draft)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Models.Research)
	assert.Empty(t, cfg.Models.Image)
	assert.Equal(t, "my-tuned-chat", cfg.Models.Chat, "explicit models are kept")
}

func TestUseProviderKeepsConfiguredKey(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  api_key: from-file\n"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, cfg.UseProvider("openai"))
	assert.Equal(t, "from-file", cfg.Backend.APIKey)

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	require.NoError(t, cfg.UseProvider("anthropic"))
	assert.Equal(t, "a-key", cfg.Backend.APIKey)
}

func TestUseProviderDropsOtherProvidersEnvKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.UseProvider("anthropic"))
	assert.Empty(t, cfg.Backend.APIKey)
}
