package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yt-seo-studio/assistant"
	"yt-seo-studio/pipeline"
	"yt-seo-studio/server"
	"yt-seo-studio/thumbnail"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := newBackend(ctx)
		if err != nil {
			return err
		}

		session := pipeline.NewSession(pipeline.NewFromConfig(backend, cfg, log), log)
		h := server.NewHandler(ctx, session,
			thumbnail.New(backend, cfg, log),
			newYouTube(),
			assistant.New(backend, cfg, log),
			log,
		)

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Infof("🌐 Listening on %s", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			log.Info("Shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		session.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
}
