package research

import (
	"context"
	"fmt"
	"strings"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"go.uber.org/zap"
)

// FallbackText replaces research that failed or came back empty
const FallbackText = "No research data available."

// Researcher looks up competing videos for a keyword with web-search grounding
type Researcher struct {
	backend llm.Backend
	cfg     *config.Config
	log     *zap.SugaredLogger
}

// New creates a new competitive Researcher
func New(backend llm.Backend, cfg *config.Config, logger *zap.SugaredLogger) *Researcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Researcher{backend: backend, cfg: cfg, log: logger.Named("research")}
}

// Research always returns text. Failures degrade to FallbackText and are only logged.
func (r *Researcher) Research(ctx context.Context, keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return FallbackText
	}

	r.log.Infof("Researching competitors for %q...", keyword)
	text, err := r.backend.GenerateGrounded(ctx, llm.GroundedRequest{
		Model:     r.cfg.Models.Research,
		Prompt:    BuildPrompt(keyword),
		WebSearch: true,
	})
	if err != nil {
		r.log.Warnw("research degraded",
			"kind", string(types.KindResearchDegraded),
			"cause", string(types.KindOf(types.Classify(types.StageResearch, err))),
			"error", err,
		)
		return FallbackText
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.log.Warnw("research degraded", "kind", string(types.KindResearchDegraded), "error", "empty response")
		return FallbackText
	}

	r.log.Infof("✅ Research ready (%d chars)", len(text))
	return text
}

func BuildPrompt(keyword string) string {
	return fmt.Sprintf("Find top performing YouTube video titles and gaps for the keyword: %q. "+
		"List 3 competitors and 1 opportunity gap.", keyword)
}
