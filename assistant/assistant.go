package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"go.uber.org/zap"
)

// ErrEmptyMessage is returned for blank messages
var ErrEmptyMessage = errors.New("message is empty")

// Assistant is a multi-turn chat with the backend's chat model
type Assistant struct {
	backend llm.Backend
	cfg     *config.Config
	log     *zap.SugaredLogger
	now     func() time.Time

	mu      sync.Mutex
	history []types.ChatMessage
}

// New creates an Assistant with an empty history
func New(backend llm.Backend, cfg *config.Config, logger *zap.SugaredLogger) *Assistant {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Assistant{backend: backend, cfg: cfg, log: logger.Named("chat"), now: time.Now}
}

// Send continues the conversation. The reply may be empty.
// A failed call leaves the history unchanged.
func (a *Assistant) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	a.mu.Lock()
	history := append([]types.ChatMessage(nil), a.history...)
	a.mu.Unlock()

	if a.cfg.Timeouts.Chat > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeouts.Chat)
		defer cancel()
	}

	sent := a.now()
	reply, err := a.backend.Chat(ctx, llm.ChatRequest{
		Model:   a.cfg.Models.Chat,
		History: history,
		Message: message,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	a.mu.Lock()
	a.history = append(a.history,
		types.ChatMessage{Role: types.RoleUser, Text: message, Timestamp: sent.UnixMilli()},
		types.ChatMessage{Role: types.RoleModel, Text: reply, Timestamp: a.now().UnixMilli()},
	)
	if limit := a.cfg.Chat.MaxHistory; limit > 0 && len(a.history) > limit {
		a.history = append([]types.ChatMessage(nil), a.history[len(a.history)-limit:]...)
	}
	a.mu.Unlock()

	a.log.Debugf("Reply of %d chars (%d messages in history)", len(reply), len(history)+2)
	return reply, nil
}

// History returns a copy of the conversation so far
func (a *Assistant) History() []types.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.ChatMessage(nil), a.history...)
}

// Reset clears the conversation
func (a *Assistant) Reset() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}
