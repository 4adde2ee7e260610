// Package llm wraps the generative backends behind one injected interface.
//
// Every pipeline stage receives a Backend in its constructor; there is no
// process-wide client. A Backend is safe for concurrent use.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yt-seo-studio/types"
)

// ErrUnsupported is returned by providers that lack a capability
var ErrUnsupported = errors.New("operation not supported by this backend")

// Backend is the generative-content collaborator
type Backend interface {
	// GenerateJSON returns the raw JSON text, or "" when the model produced no text.
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
	GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error)
	GenerateImages(ctx context.Context, req ImageRequest) ([]InlineImage, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Name() string
}

// JSONRequest asks for a structured payload matching Schema
type JSONRequest struct {
	Model          string
	Prompt         string
	Schema         *Schema
	ThinkingBudget int
	Temperature    *float64
}

// GroundedRequest asks for free text, optionally using web search
type GroundedRequest struct {
	Model     string
	Prompt    string
	WebSearch bool
}

// ImageRequest asks for one or more generated images
type ImageRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
	Size        ImageSize
}

// InlineImage is an image returned inline by the backend
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// ChatRequest continues a conversation
type ChatRequest struct {
	Model   string
	History []types.ChatMessage
	Message string
}

// ImageSize is the resolution tier of generated images
type ImageSize string

const (
	Size1K ImageSize = "1K"
	Size2K ImageSize = "2K"
	Size4K ImageSize = "4K"
)

// ParseImageSize accepts 1K, 2K or 4K in any case
func ParseImageSize(s string) (ImageSize, error) {
	switch ImageSize(strings.ToUpper(strings.TrimSpace(s))) {
	case Size1K:
		return Size1K, nil
	case Size2K:
		return Size2K, nil
	case Size4K:
		return Size4K, nil
	}
	return "", fmt.Errorf("invalid image size %q (want 1K, 2K or 4K)", s)
}

// CleanJSON strips markdown fences if a model wraps its response in ```json ... ```
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
