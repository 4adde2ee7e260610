package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"yt-seo-studio/llm"
	"yt-seo-studio/pipeline"
	"yt-seo-studio/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	genMode         string
	genContext      string
	genResearchWait time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <file|url|->",
	Short: "Generate SEO metadata for one script, transcript or idea",
	Long: `Reads the input (a file, a web page, a YouTube video URL or "-" for stdin),
runs strategy analysis and drafting, prints the result and then waits up to
--research-wait for the competitive research summary.

Every run is saved under <output>/<run id>/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mode, err := types.ParseMode(genMode)
		if err != nil {
			return err
		}

		in, err := newLoader().Load(ctx, args[0])
		if err != nil {
			return err
		}

		backend, err := newBackend(ctx)
		if err != nil {
			return err
		}

		req := types.PipelineRequest{RawInput: in.Text, Mode: mode, ContextHint: genContext}
		state, err := runOne(ctx, backend, req, cfg.Paths.Output, genResearchWait, cmd.OutOrStdout(), log)
		if state != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\n📁 Run saved to %s\n", filepath.Join(cfg.Paths.Output, state.RunID))
		}
		return err
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genMode, "mode", "m", string(types.ModeScript), "Input mode: SCRIPT, TRANSCRIPT or IDEA")
	generateCmd.Flags().StringVarP(&genContext, "context", "c", "", "Extra context or constraints for the strategy")
	generateCmd.Flags().DurationVar(&genResearchWait, "research-wait", 90*time.Second, "How long to wait for competitive research after drafting")
}

// runOne executes one request through a fresh session and persists the run.
// The result is printed before research is awaited.
func runOne(ctx context.Context, backend llm.Backend, req types.PipelineRequest, output string, researchWait time.Duration, out io.Writer, logger *zap.SugaredLogger) (*types.RunState, error) {
	dir, runID, err := newRunDir(output, logger)
	if err != nil {
		return nil, err
	}
	runLog := logger.With("run_id", runID)
	runLog.Infof("🎬 SEO pipeline starting, output dir: %s", dir.path)

	state := &types.RunState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Request:   &req,
	}
	dir.saveJSON("request.json", req)
	defer dir.finish(state)

	session := pipeline.NewSession(pipeline.NewFromConfig(backend, cfg, runLog), runLog)
	result, err := session.Generate(ctx, req)
	if err != nil {
		state.Error = types.UserMessage(err)
		runLog.Errorf("❌ Pipeline failed: %s", state.Error)
		return state, err
	}

	state.Strategy = result.Strategy
	state.Result = &result
	dir.saveJSON("strategy.json", result.Strategy)
	dir.saveJSON("content.json", result)
	printResult(out, &result)

	if researchWait <= 0 {
		return state, nil
	}
	wctx, cancel := context.WithTimeout(ctx, researchWait)
	defer cancel()
	text, ok := session.WaitResearch(wctx)
	switch {
	case ok:
		state.Research = text
		dir.saveText("research.md", text)
		fmt.Fprintf(out, "\nCompetitive research:\n%s\n", strings.TrimSpace(text))
	case errors.Is(wctx.Err(), context.DeadlineExceeded):
		runLog.Warnf("Research not ready after %s, continuing without it", researchWait)
	}
	return state, nil
}
