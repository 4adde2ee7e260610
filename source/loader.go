package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"yt-seo-studio/youtube"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"go.uber.org/zap"
)

const maxBodyBytes = 5 << 20

// VideoLookup fetches video metadata by ID
type VideoLookup interface {
	VideoDetails(ctx context.Context, videoID string) (*youtube.Video, error)
}

// Input is raw pipeline input and where it came from
type Input struct {
	Text    string         `json:"text"`
	Source  string         `json:"source"`
	VideoID string         `json:"videoId,omitempty"`
	Video   *youtube.Video `json:"video,omitempty"`
}

// Loader resolves an input reference: "-" for stdin, a video URL, a web page, or a file
type Loader struct {
	httpClient *http.Client
	videos     VideoLookup
	converter  *md.Converter
	stdin      io.Reader
	log        *zap.SugaredLogger
}

// New creates a Loader. videos may be nil, in which case video URLs pass through as text.
func New(videos VideoLookup, logger *zap.SugaredLogger) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		videos:     videos,
		converter:  md.NewConverter("", true, nil),
		stdin:      os.Stdin,
		log:        logger.Named("source"),
	}
}

// WithStdin replaces the reader used for "-"
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// Load reads the referenced input
func (l *Loader) Load(ctx context.Context, ref string) (*Input, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, fmt.Errorf("empty input reference")
	case ref == "-":
		data, err := io.ReadAll(io.LimitReader(l.stdin, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &Input{Text: string(data), Source: "stdin"}, nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		if id, ok := youtube.ExtractVideoID(ref); ok {
			return l.loadVideo(ctx, ref, id), nil
		}
		return l.loadPage(ctx, ref)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return &Input{Text: string(data), Source: ref}, nil
}

// loadVideo seeds input with the video's title and description. A failed
// lookup is only a warning; the URL itself is kept as input.
func (l *Loader) loadVideo(ctx context.Context, ref, id string) *Input {
	in := &Input{Text: ref, Source: ref, VideoID: id}
	if l.videos == nil {
		return in
	}

	video, err := l.videos.VideoDetails(ctx, id)
	switch {
	case err != nil:
		l.log.Warnf("Could not fetch video details for %s: %v", id, err)
	case video == nil:
		l.log.Warnf("Video %s not found", id)
	default:
		in.Video = video
		in.Text = strings.TrimSpace(youtube.SeedInput(video, ""))
		l.log.Infof("✅ Seeded input from video %q", video.Title)
	}
	return in
}

func (l *Loader) loadPage(ctx context.Context, url string) (*Input, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; YTSeoStudio/1.0)")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return &Input{Text: string(body), Source: url}, nil
	}

	markdown, err := l.converter.ConvertString(string(body))
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	l.log.Infof("✅ Page converted to %d chars of markdown", len(markdown))
	return &Input{Text: markdown, Source: url}, nil
}
