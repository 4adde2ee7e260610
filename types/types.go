package types

import (
	"fmt"
	"strings"
)

// Mode tells the analyzer what kind of raw input it is looking at
type Mode string

const (
	ModeScript     Mode = "SCRIPT"
	ModeTranscript Mode = "TRANSCRIPT"
	ModeIdea       Mode = "IDEA"
)

// ParseMode accepts a mode name in any case
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeScript:
		return ModeScript, nil
	case ModeTranscript:
		return ModeTranscript, nil
	case ModeIdea:
		return ModeIdea, nil
	}
	return "", fmt.Errorf("unknown input mode %q (want SCRIPT, TRANSCRIPT or IDEA)", s)
}

// Common search intent labels. The field itself is an open string.
const (
	IntentInformational = "Informational"
	IntentTransactional = "Transactional"
	IntentEntertainment = "Entertainment"
)

// Strategy is the keyword/intent model produced by the first stage
type Strategy struct {
	PrimaryKeyword    string   `json:"primaryKeyword"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	SearchIntent      string   `json:"searchIntent"`
	Hooks             []string `json:"hooks"`
	Entities          []string `json:"entities"`
}

// ContentResult holds the drafted YouTube metadata
type ContentResult struct {
	Titles          []string  `json:"titles"`
	Descriptions    []string  `json:"descriptions"`
	Tags            []string  `json:"tags"`
	Hashtags        []string  `json:"hashtags"`
	ThumbnailPrompt string    `json:"thumbnailPrompt"`
	Strategy        *Strategy `json:"strategy,omitempty"`
	Advisories      []string  `json:"advisories,omitempty"`
}

// IdeaContextHint steers IDEA mode when the caller gives no context
const IdeaContextHint = "Focus on trending potential and viral hooks."

// PipelineRequest is one "generate" action from the caller
type PipelineRequest struct {
	RawInput    string `json:"input" yaml:"input"`
	Mode        Mode   `json:"mode" yaml:"mode"`
	ContextHint string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Status is the orchestrator lifecycle state
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
	StatusDrafting  Status = "drafting"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s ends a run
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Text returns the status line shown while a stage is in flight
func (s Status) Text() string { return s.TextFor(ModeScript) }

// TextFor is Text with the wording of the given input mode
func (s Status) TextFor(mode Mode) string {
	idea := mode == ModeIdea
	switch {
	case s == StatusAnalyzing && idea:
		return "Brainstorming... Expanding your idea into a concrete strategy..."
	case s == StatusAnalyzing:
		return "Thinking... Analyzing keyword intent and entities..."
	case s == StatusDrafting && idea:
		return "Creating Metadata... Generating click-worthy titles and descriptions..."
	case s == StatusDrafting:
		return "Drafting... Generating optimized titles and descriptions..."
	}
	return ""
}

// TranscriptItem is one caption cue
type TranscriptItem struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// GeneratedImage is one thumbnail returned by the image backend
type GeneratedImage struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
	DataURL  string `json:"url"`
	Prompt   string `json:"prompt"`
}

// ChatRole is the speaker of a chat message
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the assistant conversation
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
}

// RunState tracks the full state of one CLI pipeline run
type RunState struct {
	RunID       string           `json:"run_id"`
	StartedAt   string           `json:"started_at"`
	CompletedAt string           `json:"completed_at"`
	Request     *PipelineRequest `json:"request"`
	Strategy    *Strategy        `json:"strategy"`
	Result      *ContentResult   `json:"result"`
	Research    string           `json:"research,omitempty"`
	Error       string           `json:"error,omitempty"`
}
