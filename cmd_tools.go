package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-seo-studio/captions"
	"yt-seo-studio/thumbnail"
	"yt-seo-studio/types"
	"yt-seo-studio/youtube"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	thumbSize    string
	thumbFromRun string

	captionToken  string
	captionFormat string
	captionText   bool
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail [prompt]",
	Short: "Generate thumbnail images from a prompt",
	Long: `Generates thumbnails with the image model. The prompt is either given
directly or read from a previous run with --from-run <run dir>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := thumbnailPrompt(args, thumbFromRun)
		if err != nil {
			return err
		}
		backend, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}

		images, err := thumbnail.New(backend, cfg, log).Generate(cmd.Context(), prompt, thumbSize)
		if err != nil {
			return err
		}

		dir := thumbFromRun
		if dir == "" {
			dir = filepath.Join(cfg.Paths.Output, "thumbnails-"+uuid.NewString()[:8])
		}
		paths, err := thumbnail.Save(dir, images)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

// thumbnailPrompt takes the prompt argument or the thumbnailPrompt of a saved run
func thumbnailPrompt(args []string, runPath string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if runPath == "" {
		return "", errors.New("give a prompt or --from-run")
	}
	data, err := os.ReadFile(filepath.Join(runPath, "content.json"))
	if err != nil {
		return "", fmt.Errorf("read run content: %w", err)
	}
	var result types.ContentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("parse run content: %w", err)
	}
	if strings.TrimSpace(result.ThumbnailPrompt) == "" {
		return "", fmt.Errorf("run %s has no thumbnail prompt", runPath)
	}
	return result.ThumbnailPrompt, nil
}

var videoCmd = &cobra.Command{
	Use:   "video <url|id>",
	Short: "Show YouTube video details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := youtube.ResolveVideoID(args[0])
		if !ok {
			return fmt.Errorf("%q is not a YouTube URL or video id", args[0])
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.YouTube)
		defer cancel()

		v, err := newYouTube().VideoDetails(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("video %s not found", id)
		}
		return printJSON(cmd, v)
	},
}

var captionsCmd = &cobra.Command{
	Use:   "captions",
	Short: "List and download caption tracks (OAuth token required)",
}

var captionsListCmd = &cobra.Command{
	Use:   "list <url|id>",
	Short: "List caption tracks of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := youtube.ResolveVideoID(args[0])
		if !ok {
			return fmt.Errorf("%q is not a YouTube URL or video id", args[0])
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.YouTube)
		defer cancel()

		tracks, err := newYouTube().ListCaptions(ctx, id, captionToken)
		if err != nil {
			return err
		}
		for _, c := range tracks {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", c.ID, c.Language, c.TrackKind, c.Name)
		}
		return nil
	},
}

var captionsDownloadCmd = &cobra.Command{
	Use:   "download <caption id>",
	Short: "Download a caption track",
	Long: `Downloads a caption track as WebVTT or SRT. With --text the cues are
parsed and printed as one block of plain text, ready to use as TRANSCRIPT input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.YouTube)
		defer cancel()

		track, err := newYouTube().DownloadCaption(ctx, args[0], captionToken, captionFormat)
		if err != nil {
			return err
		}
		if !captionText {
			fmt.Fprint(cmd.OutOrStdout(), track)
			return nil
		}
		items, err := captions.Parse(captionFormat, track)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), captions.PlainText(items))
		return nil
	},
}

func init() {
	thumbnailCmd.Flags().StringVar(&thumbSize, "size", "", "Image size: 1K, 2K or 4K (default image.size)")
	thumbnailCmd.Flags().StringVar(&thumbFromRun, "from-run", "", "Run directory whose thumbnail prompt to use")

	captionsCmd.PersistentFlags().StringVar(&captionToken, "token", "", "OAuth access token (default youtube.access_token)")
	captionsDownloadCmd.Flags().StringVar(&captionFormat, "format", "vtt", "Track format: vtt or srt")
	captionsDownloadCmd.Flags().BoolVar(&captionText, "text", false, "Print plain transcript text")
	captionsCmd.AddCommand(captionsListCmd, captionsDownloadCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
