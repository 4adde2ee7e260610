package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"yt-seo-studio/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

var (
	ErrAPIKeyRequired      = errors.New("YouTube API Key required")
	ErrAccessTokenRequired = errors.New("OAuth Access Token required for captions")
)

// Video is the subset of video metadata used to seed the pipeline
type Video struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ChannelTitle string   `json:"channelTitle"`
	PublishedAt  string   `json:"publishedAt"`
	Tags         []string `json:"tags,omitempty"`
	Duration     string   `json:"duration"`
	ViewCount    uint64   `json:"viewCount"`
	LikeCount    uint64   `json:"likeCount"`
	CommentCount uint64   `json:"commentCount"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}

// Caption is one caption track of a video
type Caption struct {
	ID          string `json:"id"`
	VideoID     string `json:"videoId"`
	Language    string `json:"language"`
	Name        string `json:"name"`
	TrackKind   string `json:"trackKind"`
	LastUpdated string `json:"lastUpdated"`
}

// Client calls the YouTube Data API v3
type Client struct {
	cfg config.YouTubeConfig
	log *zap.SugaredLogger
}

// New creates a YouTube client. Keys and tokens may also be passed per call.
func New(cfg config.YouTubeConfig, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{cfg: cfg, log: logger.Named("youtube")}
}

func (c *Client) service(ctx context.Context, auth option.ClientOption) (*yt.Service, error) {
	opts := []option.ClientOption{auth}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

func (c *Client) tokenOption(accessToken string) (option.ClientOption, error) {
	if accessToken == "" {
		accessToken = c.cfg.AccessToken
	}
	if accessToken == "" {
		return nil, ErrAccessTokenRequired
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return option.WithTokenSource(ts), nil
}

// VideoDetails looks a video up by ID. It returns nil, nil when the video does not exist.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*Video, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	svc, err := c.service(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return nil, err
	}

	c.log.Debugf("Fetching video details for %s", videoID)
	resp, err := svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("YouTube API Error: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return convertVideo(resp.Items[0]), nil
}

// ListCaptions lists the caption tracks of a video (OAuth bearer token)
func (c *Client) ListCaptions(ctx context.Context, videoID, accessToken string) ([]Caption, error) {
	auth, err := c.tokenOption(accessToken)
	if err != nil {
		return nil, err
	}
	svc, err := c.service(ctx, auth)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list captions: %w", err)
	}

	captions := make([]Caption, 0, len(resp.Items))
	for _, item := range resp.Items {
		cp := Caption{ID: item.Id}
		if s := item.Snippet; s != nil {
			cp.VideoID = s.VideoId
			cp.Language = s.Language
			cp.Name = s.Name
			cp.TrackKind = s.TrackKind
			cp.LastUpdated = s.LastUpdated
		}
		captions = append(captions, cp)
	}
	c.log.Infof("✅ %d caption tracks for %s", len(captions), videoID)
	return captions, nil
}

// DownloadCaption returns a caption track as text in format vtt (default) or srt
func (c *Client) DownloadCaption(ctx context.Context, captionID, accessToken, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = "vtt"
	case "vtt", "srt":
	default:
		return "", fmt.Errorf("unsupported caption format %q (want vtt or srt)", format)
	}

	auth, err := c.tokenOption(accessToken)
	if err != nil {
		return "", err
	}
	svc, err := c.service(ctx, auth)
	if err != nil {
		return "", err
	}

	resp, err := svc.Captions.Download(captionID).Tfmt(format).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("download caption track: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read caption track: %w", err)
	}
	return string(body), nil
}

func convertVideo(v *yt.Video) *Video {
	out := &Video{ID: v.Id}
	if s := v.Snippet; s != nil {
		out.Title = s.Title
		out.Description = s.Description
		out.ChannelTitle = s.ChannelTitle
		out.PublishedAt = s.PublishedAt
		out.Tags = s.Tags
		if s.Thumbnails != nil && s.Thumbnails.High != nil {
			out.ThumbnailURL = s.Thumbnails.High.Url
		}
	}
	if cd := v.ContentDetails; cd != nil {
		out.Duration = cd.Duration
	}
	if st := v.Statistics; st != nil {
		out.ViewCount = st.ViewCount
		out.LikeCount = st.LikeCount
		out.CommentCount = st.CommentCount
	}
	return out
}
