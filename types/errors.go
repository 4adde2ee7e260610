package types

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a pipeline failure
type Kind string

const (
	KindGeneration       Kind = "generation"
	KindSchemaMismatch   Kind = "schema_mismatch"
	KindNetwork          Kind = "network"
	KindTimeout          Kind = "timeout"
	KindResearchDegraded Kind = "research_degraded"
	KindInvalidInput     Kind = "invalid_input"
)

// Stage names the part of the pipeline that failed
type Stage string

const (
	StageStrategy  Stage = "strategy"
	StageDraft     Stage = "draft"
	StageResearch  Stage = "research"
	StageThumbnail Stage = "thumbnail"
)

// DefaultErrorMessage is shown when a failure carries no text
const DefaultErrorMessage = "An error occurred during generation."

// Failure is a classified error from one stage
type Failure struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	switch {
	case f.Kind == KindGeneration && f.Err == nil:
		return generationMessage(f.Stage)
	case f.Err == nil:
		return fmt.Sprintf("%s %s failure", f.Stage, f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func generationMessage(stage Stage) string {
	switch stage {
	case StageStrategy:
		return "Failed to generate SEO strategy"
	case StageDraft:
		return "Failed to draft SEO content"
	}
	return fmt.Sprintf("Failed to generate %s", stage)
}

// GenerationFailure reports that the backend returned no usable payload
func GenerationFailure(stage Stage) *Failure {
	return &Failure{Kind: KindGeneration, Stage: stage}
}

// SchemaMismatch reports a payload that does not match the declared fields
func SchemaMismatch(stage Stage, format string, args ...any) *Failure {
	return &Failure{Kind: KindSchemaMismatch, Stage: stage, Err: fmt.Errorf("schema mismatch: "+format, args...)}
}

// InvalidInput reports a request the pipeline refuses to send
func InvalidInput(stage Stage, msg string) *Failure {
	return &Failure{Kind: KindInvalidInput, Stage: stage, Err: errors.New(msg)}
}

// Classify wraps a remote-call error with its failure kind
func Classify(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return err
	}

	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: KindTimeout, Stage: stage, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Failure{Kind: KindTimeout, Stage: stage, Err: err}
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return &Failure{Kind: KindNetwork, Stage: stage, Err: err}
	}
	return &Failure{Kind: KindGeneration, Stage: stage, Err: err}
}

// KindOf returns the failure kind of err, or "" if it is unclassified
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// StageOf returns the failing stage of err, or "" if it is unclassified
func StageOf(err error) Stage {
	var f *Failure
	if errors.As(err, &f) {
		return f.Stage
	}
	return ""
}

// UserMessage is the inline error text shown to the end user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
