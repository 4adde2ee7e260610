package main

import (
	"context"
	"fmt"
	"os"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/source"
	"yt-seo-studio/youtube"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	provider   string
	outputDir  string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	log    *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "yt-seo-studio",
	Short: "YouTube SEO metadata studio",
	Long: `Turns a script, transcript or video idea into a keyword strategy and
ranked YouTube metadata: titles, descriptions, tags, hashtags and a
thumbnail prompt, followed by a competitive research summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is for local dev only; CI injects real env vars
		config.LoadEnv()

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = logger.Sugar()

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if provider != "" {
			if err := cfg.UseProvider(provider); err != nil {
				return err
			}
		}
		if outputDir != "" {
			cfg.Paths.Output = outputDir
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Backend provider (gemini, anthropic, openai, mock)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "Output directory for runs (overrides paths.output)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd, batchCmd, thumbnailCmd, videoCmd, captionsCmd, chatCmd, serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newBackend(ctx context.Context) (llm.Backend, error) {
	backend, err := llm.New(ctx, cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.Backend.Provider, err)
	}
	log.Debugf("Using %s backend", backend.Name())
	return backend, nil
}

func newYouTube() *youtube.Client {
	return youtube.New(cfg.YouTube, log)
}

// newLoader seeds video URLs from the Data API only when a key is configured
func newLoader() *source.Loader {
	if cfg.YouTube.APIKey == "" {
		return source.New(nil, log)
	}
	return source.New(newYouTube(), log)
}
