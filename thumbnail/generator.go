package thumbnail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"go.uber.org/zap"
)

// Generator renders thumbnail prompts into images through the backend
type Generator struct {
	backend llm.Backend
	cfg     *config.Config
	log     *zap.SugaredLogger
}

// New creates a new thumbnail Generator
func New(backend llm.Backend, cfg *config.Config, logger *zap.SugaredLogger) *Generator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Generator{backend: backend, cfg: cfg, log: logger.Named("thumbnail")}
}

// Generate returns every image the backend produced for prompt.
// An empty size uses the configured default.
func (g *Generator) Generate(ctx context.Context, prompt, size string) ([]types.GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, types.InvalidInput(types.StageThumbnail, "thumbnail prompt is empty")
	}
	if size == "" {
		size = g.cfg.Image.Size
	}
	imageSize, err := llm.ParseImageSize(size)
	if err != nil {
		return nil, types.InvalidInput(types.StageThumbnail, err.Error())
	}

	if g.cfg.Timeouts.Image > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeouts.Image)
		defer cancel()
	}

	g.log.Infof("Generating %s %s thumbnail with %s: %q", imageSize, g.cfg.Image.AspectRatio, g.cfg.Models.Image, truncate(prompt, 60))
	inline, err := g.backend.GenerateImages(ctx, llm.ImageRequest{
		Model:       g.cfg.Models.Image,
		Prompt:      prompt,
		AspectRatio: g.cfg.Image.AspectRatio,
		Size:        imageSize,
	})
	if err != nil {
		return nil, types.Classify(types.StageThumbnail, err)
	}
	if len(inline) == 0 {
		return nil, types.GenerationFailure(types.StageThumbnail)
	}

	images := make([]types.GeneratedImage, 0, len(inline))
	for _, img := range inline {
		images = append(images, types.GeneratedImage{
			MIMEType: img.MIMEType,
			Data:     img.Data,
			DataURL:  DataURL(img.MIMEType, img.Data),
			Prompt:   prompt,
		})
	}
	g.log.Infof("✅ %d thumbnail(s) generated", len(images))
	return images, nil
}

// DataURL encodes an image as data:<mime>;base64,<data>
func DataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// Save writes thumbnail_<n>.<ext> files into dir and returns their paths
func Save(dir string, images []types.GeneratedImage) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("thumbnail_%d%s", i+1, extension(img.MIMEType)))
		if err := os.WriteFile(path, img.Data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func extension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}

// truncate shortens s to n runes for log lines
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
