package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"yt-seo-studio/config"
	"yt-seo-studio/llm"
	"yt-seo-studio/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendKeepsHistory(t *testing.T) {
	var seen [][]types.ChatMessage
	m := &llm.Mock{ChatFunc: func(ctx context.Context, req llm.ChatRequest) (string, error) {
		seen = append(seen, req.History)
		return "reply to " + req.Message, nil
	}}
	a := New(m, config.Default(), nil)

	reply, err := a.Send(context.Background(), "How long should my title be?")
	require.NoError(t, err)
	assert.Equal(t, "reply to How long should my title be?", reply)

	_, err = a.Send(context.Background(), "And tags?")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	require.Len(t, seen[1], 2)
	assert.Equal(t, types.RoleUser, seen[1][0].Role)
	assert.Equal(t, types.RoleModel, seen[1][1].Role)
	assert.Equal(t, "reply to How long should my title be?", seen[1][1].Text)

	h := a.History()
	require.Len(t, h, 4)
	assert.NotZero(t, h[0].Timestamp)

	a.Reset()
	assert.Empty(t, a.History())
}

func TestSendEmptyReplyAllowed(t *testing.T) {
	m := &llm.Mock{ChatFunc: func(ctx context.Context, req llm.ChatRequest) (string, error) {
		return "", nil
	}}
	a := New(m, config.Default(), nil)
	reply, err := a.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
	assert.Len(t, a.History(), 2)
}

func TestSendErrors(t *testing.T) {
	m := &llm.Mock{ChatFunc: func(ctx context.Context, req llm.ChatRequest) (string, error) {
		return "", errors.New("rate limited")
	}}
	a := New(m, config.Default(), nil)

	_, err := a.Send(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = a.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Empty(t, a.History(), "failed turn is not recorded")
}

func TestHistoryTrimmed(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.MaxHistory = 4
	a := New(llm.NewMock(), cfg, nil)

	for i := 0; i < 5; i++ {
		_, err := a.Send(context.Background(), fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	h := a.History()
	require.Len(t, h, 4)
	assert.Equal(t, "message 3", h[0].Text)
	assert.Equal(t, "You said: message 4", h[3].Text)
}
