package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"go.uber.org/zap"
)

// Analyzer derives the keyword/intent strategy from raw creator input
type Analyzer struct {
	backend llm.Backend
	cfg     *config.Config
	log     *zap.SugaredLogger
}

// New creates a new strategy Analyzer
func New(backend llm.Backend, cfg *config.Config, logger *zap.SugaredLogger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Analyzer{backend: backend, cfg: cfg, log: logger.Named("strategy")}
}

// Schema is the declared output contract of the analysis call
func Schema() *llm.Schema {
	return llm.Object(
		[]string{"primaryKeyword", "secondaryKeywords", "searchIntent", "hooks"},
		llm.Prop("primaryKeyword", llm.String()),
		llm.Prop("secondaryKeywords", llm.StringArray()),
		llm.Prop("searchIntent", llm.String()),
		llm.Prop("hooks", llm.StringArray()),
		llm.Prop("entities", llm.StringArray()),
	)
}

// Analyze runs the reasoning model over the input and validates its answer
func (a *Analyzer) Analyze(ctx context.Context, input string, mode types.Mode, contextHint string) (types.Strategy, error) {
	if strings.TrimSpace(input) == "" {
		return types.Strategy{}, types.InvalidInput(types.StageStrategy, "input is empty")
	}
	if mode == "" {
		mode = types.ModeIdea
	}

	truncated := Truncate(input, a.cfg.Limits.StrategyInputChars)
	if len(truncated) < len(input) {
		a.log.Debugf("Input truncated to %d characters", a.cfg.Limits.StrategyInputChars)
	}
	a.log.Infof("Analyzing %s input with %s (thinking budget %d)...",
		strings.ToLower(string(mode)), a.cfg.Models.Strategy, a.cfg.Strategy.ThinkingBudget)

	raw, err := a.backend.GenerateJSON(ctx, llm.JSONRequest{
		Model:          a.cfg.Models.Strategy,
		Prompt:         BuildPrompt(truncated, mode, contextHint),
		Schema:         Schema(),
		ThinkingBudget: a.cfg.Strategy.ThinkingBudget,
		Temperature:    a.cfg.Strategy.Temperature,
	})
	if err != nil {
		return types.Strategy{}, types.Classify(types.StageStrategy, err)
	}
	if strings.TrimSpace(raw) == "" {
		return types.Strategy{}, types.GenerationFailure(types.StageStrategy)
	}

	s, err := ParseStrategy(raw)
	if err != nil {
		return types.Strategy{}, err
	}

	a.log.Infof("✅ Strategy ready: keyword=%q, %d secondary, intent=%s, %d hooks",
		s.PrimaryKeyword, len(s.SecondaryKeywords), s.SearchIntent, len(s.Hooks))
	return s, nil
}

// BuildPrompt renders the analysis instructions around the (already truncated) input
func BuildPrompt(input string, mode types.Mode, contextHint string) string {
	hint := strings.TrimSpace(contextHint)
	if hint == "" {
		hint = "None"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analyze the following YouTube video %s.\n", strings.ToLower(string(mode))))
	sb.WriteString(fmt.Sprintf("Context/Constraints: %s\n\n", hint))
	sb.WriteString("Determine the optimal SEO strategy.\n")
	sb.WriteString("Identify:\n")
	sb.WriteString("1. The single most effective Primary Keyword (exactly one).\n")
	sb.WriteString("2. 5-10 Secondary Keywords (long-tail and short-tail).\n")
	sb.WriteString(fmt.Sprintf("3. The Search Intent (%s, %s, %s).\n",
		types.IntentInformational, types.IntentTransactional, types.IntentEntertainment))
	sb.WriteString("4. 3 distinct Hook angles for titles.\n")
	sb.WriteString("5. Key Entities mentioned, if any.\n\n")
	sb.WriteString("IMPORTANT: Detect the language of the Input Data below. ")
	sb.WriteString("The Primary Keyword, Secondary Keywords, and Hooks MUST be in that same language.\n\n")
	sb.WriteString("Input Data:\n")
	sb.WriteString(input)
	return sb.String()
}

type strategyJSON struct {
	PrimaryKeyword    string   `json:"primaryKeyword"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	SearchIntent      string   `json:"searchIntent"`
	Hooks             []string `json:"hooks"`
	Entities          []string `json:"entities"`
}

// ParseStrategy validates a raw analysis payload against the declared fields
func ParseStrategy(raw string) (types.Strategy, error) {
	content := llm.CleanJSON(raw)

	var parsed strategyJSON
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return types.Strategy{}, types.SchemaMismatch(types.StageStrategy, "%v", err)
	}

	s := types.Strategy{
		PrimaryKeyword:    strings.TrimSpace(parsed.PrimaryKeyword),
		SecondaryKeywords: cleanList(parsed.SecondaryKeywords),
		SearchIntent:      strings.TrimSpace(parsed.SearchIntent),
		Hooks:             cleanList(parsed.Hooks),
		Entities:          cleanList(parsed.Entities),
	}

	switch {
	case s.PrimaryKeyword == "":
		return types.Strategy{}, types.SchemaMismatch(types.StageStrategy, "primaryKeyword is missing")
	case len(s.SecondaryKeywords) == 0:
		return types.Strategy{}, types.SchemaMismatch(types.StageStrategy, "secondaryKeywords is missing")
	case s.SearchIntent == "":
		return types.Strategy{}, types.SchemaMismatch(types.StageStrategy, "searchIntent is missing")
	case len(s.Hooks) == 0:
		return types.Strategy{}, types.SchemaMismatch(types.StageStrategy, "hooks is missing")
	}
	return s, nil
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// cleanList trims entries and drops blanks and exact duplicates
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
