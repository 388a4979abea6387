package flows

import (
	"errors"
	"fmt"

	"resumefit/internal/llm"
)

// Kind classifies a GenerationError.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindGenerationFailed  Kind = "generation_failed"
)

// MessageUnsupportedFormat is shown to users when the resume encoding is not accepted.
const MessageUnsupportedFormat = "Unsupported file type provided. Please use PDF, DOCX, or plain text."

var flowMessages = map[string]string{
	FlowExtractEntities: "Failed to process resume file for entity extraction.",
	FlowScoreJobFit:     "Failed to process resume file for job fit scoring.",
	FlowGenerateResume:  "AI failed to generate resume content.",
}

// ErrNoResume is returned when a flow receives neither text nor a document.
var ErrNoResume = errors.New("no resume provided")

// GenerationError reports a flow that produced no usable output.
type GenerationError struct {
	Kind Kind
	Flow string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Flow, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Message is the user-facing summary for the error.
func (e *GenerationError) Message() string {
	if e.Kind == KindUnsupportedFormat {
		return MessageUnsupportedFormat
	}
	if msg, ok := flowMessages[e.Flow]; ok {
		return msg
	}
	return "AI generation failed."
}

func classify(flow string, err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	kind := KindGenerationFailed
	if errors.Is(err, llm.ErrUnsupportedMedia) {
		kind = KindUnsupportedFormat
	}
	return &GenerationError{Kind: kind, Flow: flow, Err: err}
}
