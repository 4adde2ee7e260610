package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Models   ModelsConfig   `yaml:"models"`
	Strategy StrategyConfig `yaml:"strategy"`
	Draft    DraftConfig    `yaml:"draft"`
	Limits   LimitsConfig   `yaml:"limits"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Image    ImageConfig    `yaml:"image"`
	Chat     ChatConfig     `yaml:"chat"`
	Batch    BatchConfig    `yaml:"batch"`
	Server   ServerConfig   `yaml:"server"`
	Paths    PathsConfig    `yaml:"paths"`
}

type BackendConfig struct {
	Provider string `yaml:"provider"` // gemini | anthropic | openai | mock
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

type ModelsConfig struct {
	Strategy string `yaml:"strategy"`
	Draft    string `yaml:"draft"`
	Research string `yaml:"research"`
	Image    string `yaml:"image"`
	Chat     string `yaml:"chat"`
}

// providerModels are the models used for fields left empty in config.yaml
var providerModels = map[string]ModelsConfig{
	"gemini": {
		Strategy: "gemini-3-pro-preview",
		Draft:    "gemini-3-flash-preview",
		Research: "gemini-3-flash-preview",
		Image:    "gemini-3-pro-image-preview",
		Chat:     "gemini-3-pro-preview",
	},
	"anthropic": {
		Strategy: "claude-sonnet-4-20250514",
		Draft:    "claude-sonnet-4-20250514",
		Research: "claude-sonnet-4-20250514",
		Chat:     "claude-sonnet-4-20250514",
	},
	"openai": {
		Strategy: "gpt-4o",
		Draft:    "gpt-4o-mini",
		Research: "gpt-4o-mini",
		Chat:     "gpt-4o",
	},
	"mock": {Strategy: "mock", Draft: "mock", Research: "mock", Image: "mock", Chat: "mock"},
}

// DefaultModels returns the built-in models of a provider
func DefaultModels(provider string) ModelsConfig {
	return providerModels[strings.ToLower(strings.TrimSpace(provider))]
}

// fields lists the model slots in a fixed order
func (m *ModelsConfig) fields() []*string {
	return []*string{&m.Strategy, &m.Draft, &m.Research, &m.Image, &m.Chat}
}

// fill sets empty slots from defaults
func (m *ModelsConfig) fill(defaults ModelsConfig) {
	defs := defaults.fields()
	for i, slot := range m.fields() {
		if *slot == "" {
			*slot = *defs[i]
		}
	}
}

// switchDefaults moves slots still on the old provider's defaults to the new ones.
// Models set explicitly for another provider are kept.
func (m *ModelsConfig) switchDefaults(from, to ModelsConfig) {
	old, next := from.fields(), to.fields()
	for i, slot := range m.fields() {
		if *slot == "" || *slot == *old[i] {
			*slot = *next[i]
		}
	}
}

type StrategyConfig struct {
	ThinkingBudget int      `yaml:"thinking_budget"`
	Temperature    *float64 `yaml:"temperature"`
}

type DraftConfig struct {
	Temperature *float64 `yaml:"temperature"`
	// Lint runs the advisory checks on drafted copy
	Lint bool `yaml:"lint"`
}

type LimitsConfig struct {
	StrategyInputChars int `yaml:"strategy_input_chars"`
	DraftExcerptChars  int `yaml:"draft_excerpt_chars"`
}

type TimeoutsConfig struct {
	Strategy time.Duration `yaml:"strategy"`
	Draft    time.Duration `yaml:"draft"`
	Research time.Duration `yaml:"research"`
	Image    time.Duration `yaml:"image"`
	Chat     time.Duration `yaml:"chat"`
	YouTube  time.Duration `yaml:"youtube"`
}

type YouTubeConfig struct {
	APIKey      string `yaml:"api_key"`
	AccessToken string `yaml:"access_token"`
	Endpoint    string `yaml:"endpoint"`
}

type ImageConfig struct {
	AspectRatio string `yaml:"aspect_ratio"`
	Size        string `yaml:"size"`
}

type ChatConfig struct {
	MaxHistory int `yaml:"max_history"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
}

// Load reads config.yaml and returns a Config struct.
// A missing file falls back to the embedded defaults.
func Load(path string) (*Config, error) {
	cfg, err := parse(defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("parse default config: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded configuration with environment overrides applied
func Default() *Config {
	cfg, err := parse(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("embedded config: %v", err))
	}
	cfg.ApplyEnv()
	_ = cfg.Validate()
	return cfg
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv loads .env files (local dev only; CI injects real env vars)
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ApplyEnv lets environment variables override secrets and the provider
func (c *Config) ApplyEnv() {
	if p := os.Getenv("SEO_PROVIDER"); p != "" {
		c.Backend.Provider = p
	}
	if c.Backend.APIKey == "" {
		c.Backend.APIKey = providerKey(c.Backend.Provider)
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" && c.YouTube.APIKey == "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("YOUTUBE_ACCESS_TOKEN"); v != "" && c.YouTube.AccessToken == "" {
		c.YouTube.AccessToken = v
	}
}

// UseProvider switches the backend. The key is replaced when the new
// provider's environment variable is set; a key that came from the old
// provider's environment is dropped. Models left on the old provider's
// defaults follow the switch.
func (c *Config) UseProvider(provider string) error {
	from := c.Backend.Provider
	to := strings.ToLower(strings.TrimSpace(provider))
	if _, ok := providerModels[to]; !ok {
		return fmt.Errorf("unknown backend provider %q", provider)
	}

	if key := providerKey(to); key != "" {
		c.Backend.APIKey = key
	} else if c.Backend.APIKey == providerKey(from) {
		c.Backend.APIKey = ""
	}
	c.Models.switchDefaults(DefaultModels(from), DefaultModels(to))
	c.Backend.Provider = to
	return c.Validate()
}

func providerKey(provider string) string {
	var names []string
	switch strings.ToLower(provider) {
	case "anthropic":
		names = []string{"ANTHROPIC_API_KEY"}
	case "openai":
		names = []string{"OPENAI_API_KEY"}
	default:
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}
	}
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Validate fills zero values with defaults and rejects impossible settings
func (c *Config) Validate() error {
	c.Backend.Provider = strings.ToLower(strings.TrimSpace(c.Backend.Provider))
	if c.Backend.Provider == "" {
		c.Backend.Provider = "gemini"
	}
	switch c.Backend.Provider {
	case "gemini", "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("unknown backend provider %q", c.Backend.Provider)
	}
	c.Models.fill(DefaultModels(c.Backend.Provider))

	if c.Limits.StrategyInputChars <= 0 {
		c.Limits.StrategyInputChars = 20000
	}
	if c.Limits.DraftExcerptChars <= 0 {
		c.Limits.DraftExcerptChars = 1000
	}

	setDuration(&c.Timeouts.Strategy, 2*time.Minute)
	setDuration(&c.Timeouts.Draft, 90*time.Second)
	setDuration(&c.Timeouts.Research, 60*time.Second)
	setDuration(&c.Timeouts.Image, 2*time.Minute)
	setDuration(&c.Timeouts.Chat, 60*time.Second)
	setDuration(&c.Timeouts.YouTube, 20*time.Second)

	if c.Image.AspectRatio == "" {
		c.Image.AspectRatio = "16:9"
	}
	if c.Image.Size == "" {
		c.Image.Size = "1K"
	}
	if c.Chat.MaxHistory <= 0 {
		c.Chat.MaxHistory = 20
	}
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = 2
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	return nil
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}
