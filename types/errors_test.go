package types

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimeout struct{}

func (fakeTimeout) Error() string   { return "i/o timeout" }
func (fakeTimeout) Timeout() bool   { return true }
func (fakeTimeout) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", &url.Error{Op: "Post", URL: "https://x", Err: fakeTimeout{}}, KindTimeout},
		{"transport", &url.Error{Op: "Post", URL: "https://x", Err: errors.New("connection refused")}, KindNetwork},
		{"backend", errors.New("quota exceeded"), KindGeneration},
		{"already classified", SchemaMismatch(StageDraft, "bad"), KindSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(StageStrategy, tt.err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}

	assert.NoError(t, Classify(StageStrategy, nil))
}

func TestClassify_KeepsOriginalStage(t *testing.T) {
	err := Classify(StageStrategy, GenerationFailure(StageDraft))
	assert.Equal(t, StageDraft, StageOf(err))
}

func TestGenerationFailureMessage(t *testing.T) {
	assert.Equal(t, "Failed to generate SEO strategy", GenerationFailure(StageStrategy).Error())
	assert.Equal(t, "Failed to draft SEO content", GenerationFailure(StageDraft).Error())
}

func TestFailureUnwrap(t *testing.T) {
	err := Classify(StageDraft, context.DeadlineExceeded)

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, StageDraft, f.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, DefaultErrorMessage, UserMessage(emptyErr{}))
	assert.Equal(t, "Failed to draft SEO content", UserMessage(GenerationFailure(StageDraft)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" idea ")
	require.NoError(t, err)
	assert.Equal(t, ModeIdea, m)

	_, err = ParseMode("podcast")
	assert.Error(t, err)
}

func TestStatusText(t *testing.T) {
	assert.Contains(t, StatusAnalyzing.Text(), "Analyzing")
	assert.Contains(t, StatusDrafting.Text(), "Drafting")
	assert.Empty(t, StatusIdle.Text())
	assert.Empty(t, StatusSucceeded.TextFor(ModeIdea))

	assert.Equal(t, "Brainstorming... Expanding your idea into a concrete strategy...", StatusAnalyzing.TextFor(ModeIdea))
	assert.Equal(t, "Creating Metadata... Generating click-worthy titles and descriptions...", StatusDrafting.TextFor(ModeIdea))
	assert.Equal(t, StatusDrafting.Text(), StatusDrafting.TextFor(ModeTranscript))
}

func TestStatusTerminal(t *testing.T) {
	for _, st := range []Status{StatusIdle, StatusAnalyzing, StatusDrafting} {
		assert.False(t, st.Terminal(), st)
	}
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
