package draft

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

// Drafter expands a strategy into titles, descriptions, tags and a thumbnail prompt
type Drafter struct {
	backend llm.Backend
	cfg     *config.Config
	log     *zap.SugaredLogger
}

// New creates a new content Drafter
func New(backend llm.Backend, cfg *config.Config, logger *zap.SugaredLogger) *Drafter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Drafter{backend: backend, cfg: cfg, log: logger.Named("draft")}
}

// Schema is the declared output contract of the drafting call.
// hashtags is declared but not required.
func Schema() *llm.Schema {
	return llm.Object(
		[]string{"titles", "descriptions", "tags", "thumbnailPrompt"},
		llm.Prop("titles", llm.StringArray()),
		llm.Prop("descriptions", llm.StringArray()),
		llm.Prop("tags", llm.StringArray()),
		llm.Prop("hashtags", llm.StringArray()),
		llm.Prop("thumbnailPrompt", llm.String()),
	)
}

// Draft generates the metadata. The returned result has no Strategy attached.
func (d *Drafter) Draft(ctx context.Context, strategy types.Strategy, originalInput string) (types.ContentResult, error) {
	if strings.TrimSpace(strategy.PrimaryKeyword) == "" {
		return types.ContentResult{}, types.InvalidInput(types.StageDraft, "strategy has no primary keyword")
	}

	prompt, err := BuildPrompt(strategy, Excerpt(originalInput, d.cfg.Limits.DraftExcerptChars))
	if err != nil {
		return types.ContentResult{}, err
	}

	d.log.Infof("Drafting metadata for %q with %s...", strategy.PrimaryKeyword, d.cfg.Models.Draft)

	raw, err := d.backend.GenerateJSON(ctx, llm.JSONRequest{
		Model:       d.cfg.Models.Draft,
		Prompt:      prompt,
		Schema:      Schema(),
		Temperature: d.cfg.Draft.Temperature,
	})
	if err != nil {
		return types.ContentResult{}, types.Classify(types.StageDraft, err)
	}
	if strings.TrimSpace(raw) == "" {
		return types.ContentResult{}, types.GenerationFailure(types.StageDraft)
	}

	result, err := ParseContent(raw)
	if err != nil {
		return types.ContentResult{}, err
	}

	if d.cfg.Draft.Lint {
		result.Advisories = Lint(result, strategy)
		for _, a := range result.Advisories {
			d.log.Debugf("advisory: %s", a)
		}
	}

	d.log.Infof("✅ Drafted %d titles, %d descriptions, %d tags, %d hashtags",
		len(result.Titles), len(result.Descriptions), len(result.Tags), len(result.Hashtags))
	return result, nil
}

// BuildPrompt embeds the strategy and the copy requirements
func BuildPrompt(strategy types.Strategy, excerpt string) (string, error) {
	strategyJSON, err := json.Marshal(strategy)
	if err != nil {
		return "", fmt.Errorf("marshal strategy: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Create YouTube SEO metadata based on this strategy:\n")
	sb.Write(strategyJSON)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Original Context (excerpt): %s\n\n", excerpt))
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Titles: 3 variants. 55-70 chars. High CTR. Include primary keyword near start.\n")
	sb.WriteString("2. Descriptions: 3 variants. Engaging, comprehensive summaries of the video content (approx 150-200 words).\n")
	sb.WriteString("   - The first 2 lines must contain the hook + primary keyword.\n")
	sb.WriteString("   - Include a clear Call to Action (CTA).\n")
	sb.WriteString("   - Use the keywords naturally throughout the text, never stuffed.\n")
	sb.WriteString("3. Tags: 20 mixed tags (broad and niche).\n")
	sb.WriteString("4. Hashtags: 3-5 relevant hashtags.\n")
	sb.WriteString("5. Thumbnail Prompt: Detailed Art Director instruction for an AI image generator. ")
	sb.WriteString("Subject, composition, lighting, colors. Aspect Ratio 16:9. Keep this in English.\n\n")
	sb.WriteString("IMPORTANT: Detect the language of the \"Original Context\". ")
	sb.WriteString("Generate Titles, Descriptions, Tags, and Hashtags in that SAME language.\n\n")
	sb.WriteString("Strictly adhere to character limits.")
	return sb.String(), nil
}

// Excerpt keeps the first n runes of the input and always marks the cut
func Excerpt(s string, n int) string {
	if n > 0 {
		count := 0
		for i := range s {
			if count == n {
				s = s[:i]
				break
			}
			count++
		}
	}
	return s + "..."
}

type contentJSON struct {
	Titles          []string `json:"titles"`
	Descriptions    []string `json:"descriptions"`
	Tags            []string `json:"tags"`
	Hashtags        []string `json:"hashtags"`
	ThumbnailPrompt string   `json:"thumbnailPrompt"`
}

// ParseContent validates a raw drafting payload against the declared fields
func ParseContent(raw string) (types.ContentResult, error) {
	content := llm.CleanJSON(raw)

	var parsed contentJSON
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return types.ContentResult{}, types.SchemaMismatch(types.StageDraft, "%v", err)
	}

	result := types.ContentResult{
		Titles:          cleanList(parsed.Titles),
		Descriptions:    cleanList(parsed.Descriptions),
		Tags:            cleanList(parsed.Tags),
		Hashtags:        normalizeHashtags(parsed.Hashtags),
		ThumbnailPrompt: strings.TrimSpace(parsed.ThumbnailPrompt),
	}

	switch {
	case len(result.Titles) == 0:
		return types.ContentResult{}, types.SchemaMismatch(types.StageDraft, "titles is missing")
	case len(result.Descriptions) == 0:
		return types.ContentResult{}, types.SchemaMismatch(types.StageDraft, "descriptions is missing")
	case len(result.Tags) == 0:
		return types.ContentResult{}, types.SchemaMismatch(types.StageDraft, "tags is missing")
	case result.ThumbnailPrompt == "":
		return types.ContentResult{}, types.SchemaMismatch(types.StageDraft, "thumbnailPrompt is missing")
	}
	return result, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// normalizeHashtags gives every tag a single leading # and removes inner spaces
func normalizeHashtags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, h := range in {
		h = strings.TrimLeft(strings.TrimSpace(h), "#")
		h = strings.Join(strings.Fields(h), "")
		if h == "" {
			continue
		}
		h = "#" + h
		if seen[strings.ToLower(h)] {
			continue
		}
		seen[strings.ToLower(h)] = true
		out = append(out, h)
	}
	return out
}
