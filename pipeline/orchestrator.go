// Package pipeline sequences strategy analysis, drafting and the detached
// competitive research, and keeps the caller-side session state.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	strategy "yt-seo-studio/01_strategy"
	draft "yt-seo-studio/02_draft"
	research "yt-seo-studio/03_research"
	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, input string, mode types.Mode, contextHint string) (types.Strategy, error)
}

type Drafter interface {
	Draft(ctx context.Context, s types.Strategy, originalInput string) (types.ContentResult, error)
}

type Researcher interface {
	Research(ctx context.Context, keyword string) string
}

// StatusFunc receives every lifecycle transition of a run
type StatusFunc func(types.Status)

// ResearchResult is delivered once per StartResearch call
type ResearchResult struct {
	Generation uint64
	Keyword    string
	Text       string
}

// Orchestrator runs the two blocking stages and launches research
type Orchestrator struct {
	analyzer   Analyzer
	drafter    Drafter
	researcher Researcher
	timeouts   config.TimeoutsConfig
	log        *zap.SugaredLogger
}

// New wires an Orchestrator from its three stages
func New(a Analyzer, d Drafter, r Researcher, timeouts config.TimeoutsConfig, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		analyzer:   a,
		drafter:    d,
		researcher: r,
		timeouts:   timeouts,
		log:        logger.Named("pipeline"),
	}
}

// NewFromConfig builds the standard stages on one backend
func NewFromConfig(backend llm.Backend, cfg *config.Config, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return New(
		strategy.New(backend, cfg, logger),
		draft.New(backend, cfg, logger),
		research.New(backend, cfg, logger),
		cfg.Timeouts,
		logger,
	)
}

// Run executes Analyzing then Drafting. The drafter is only invoked with a
// strategy in hand; on success the strategy is attached to the result.
// IDEA requests without a context hint get IdeaContextHint.
func (o *Orchestrator) Run(ctx context.Context, req types.PipelineRequest, onStatus StatusFunc) (types.ContentResult, error) {
	emit := func(s types.Status) {
		if onStatus != nil {
			onStatus(s)
		}
	}

	hint := req.ContextHint
	if req.Mode == types.ModeIdea && strings.TrimSpace(hint) == "" {
		hint = types.IdeaContextHint
	}

	o.log.Info("━━━ STAGE 1: Strategy ━━━")
	emit(types.StatusAnalyzing)
	start := time.Now()

	sctx, cancel := withTimeout(ctx, o.timeouts.Strategy)
	strat, err := o.analyzer.Analyze(sctx, req.RawInput, req.Mode, hint)
	err = stageError(types.StageStrategy, sctx, err)
	cancel()
	if err != nil {
		o.log.Errorf("Strategy failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		emit(types.StatusFailed)
		return types.ContentResult{}, err
	}

	o.log.Info("━━━ STAGE 2: Draft ━━━")
	emit(types.StatusDrafting)

	dctx, cancel := withTimeout(ctx, o.timeouts.Draft)
	result, err := o.drafter.Draft(dctx, strat, req.RawInput)
	err = stageError(types.StageDraft, dctx, err)
	cancel()
	if err != nil {
		o.log.Errorf("Draft failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		emit(types.StatusFailed)
		return types.ContentResult{}, err
	}

	result.Strategy = &strat
	o.log.Infof("✅ Pipeline complete in %s", time.Since(start).Round(time.Millisecond))
	emit(types.StatusSucceeded)
	return result, nil
}

// StartResearch runs research off the caller's context with its own timeout.
// The channel yields exactly one result and is then closed.
func (o *Orchestrator) StartResearch(keyword string, generation uint64) <-chan ResearchResult {
	ch := make(chan ResearchResult, 1)
	go func() {
		defer close(ch)
		ctx, cancel := withTimeout(context.Background(), o.timeouts.Research)
		defer cancel()
		ch <- ResearchResult{
			Generation: generation,
			Keyword:    keyword,
			Text:       o.researcher.Research(ctx, keyword),
		}
	}()
	return ch
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// stageError classifies err, reporting an expired stage deadline as a timeout
// even when the stage wrapped it differently.
func stageError(stage types.Stage, stageCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(stageCtx.Err(), context.DeadlineExceeded) && types.KindOf(err) != types.KindTimeout {
		return &types.Failure{Kind: types.KindTimeout, Stage: stage, Err: err}
	}
	return types.Classify(stage, err)
}
