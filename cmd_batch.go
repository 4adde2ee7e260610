package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var batchResearchWait time.Duration

var batchCmd = &cobra.Command{
	Use:   "batch <requests.yaml>",
	Short: "Run a YAML list of requests concurrently",
	Long: `Each entry has input, mode and an optional context:

  - input: "How to grow tomatoes indoors in winter"
    mode: IDEA
  - input: "..."
    mode: SCRIPT
    context: "Channel for beginner gardeners"

Requests run batch.concurrency at a time. A failed request does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := loadBatch(args[0])
		if err != nil {
			return err
		}
		backend, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		return runBatch(cmd.Context(), backend, reqs, cfg.Batch.Concurrency, batchResearchWait, cmd.OutOrStdout(), log)
	},
}

func init() {
	batchCmd.Flags().DurationVar(&batchResearchWait, "research-wait", 60*time.Second, "How long each run waits for competitive research")
}

// loadBatch reads and validates a YAML request list
func loadBatch(path string) ([]types.PipelineRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reqs []types.PipelineRequest
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%s contains no requests", path)
	}
	for i := range reqs {
		if strings.TrimSpace(reqs[i].RawInput) == "" {
			return nil, fmt.Errorf("request %d: input is empty", i+1)
		}
		if reqs[i].Mode == "" {
			reqs[i].Mode = types.ModeScript
			continue
		}
		mode, err := types.ParseMode(string(reqs[i].Mode))
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i+1, err)
		}
		reqs[i].Mode = mode
	}
	return reqs, nil
}

func runBatch(ctx context.Context, backend llm.Backend, reqs []types.PipelineRequest, concurrency int, researchWait time.Duration, out io.Writer, logger *zap.SugaredLogger) error {
	var g errgroup.Group
	g.SetLimit(concurrency)

	var mu sync.Mutex
	failed := 0
	for i, req := range reqs {
		g.Go(func() error {
			var buf strings.Builder
			state, err := runOne(ctx, backend, req, cfg.Paths.Output, researchWait, &buf, logger.With("request", i+1))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failed++
				fmt.Fprintf(out, "❌ Request %d failed: %s\n", i+1, types.UserMessage(err))
			default:
				fmt.Fprintf(out, "✅ Request %d → run %s%s", i+1, state.RunID, buf.String())
			}
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(out, "\n%d of %d requests succeeded\n", len(reqs)-failed, len(reqs))
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(reqs))
	}
	return nil
}
