package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Provider abstracts structured-output LLM backends.
type Provider interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Generate returns a JSON document conforming to req.Schema.
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}

// Request is a single structured-output call.
type Request struct {
	Operation string
	System    string
	Prompt    string
	Media     *Media
	Schema    *Schema
}

// Media is an inline document attached to a request.
type Media struct {
	MIMEType string
	FileName string
	Data     []byte
}

var (
	// ErrNotImplemented is returned by the placeholder provider.
	ErrNotImplemented = errors.New("LLM not implemented")
	// ErrUnsupportedMedia marks inputs the provider cannot read.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrEmptyOutput is returned when the provider produced no content.
	ErrEmptyOutput = errors.New("llm returned empty output")
	// ErrInvalidOutput is returned when the provider output is not valid JSON.
	ErrInvalidOutput = errors.New("llm returned invalid JSON")
)

// StatusError carries an HTTP status from a provider API.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d: %s", e.Provider, e.Code, e.Message)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Code == 429 || e.Code >= 500
}

// PlaceholderClient is a stub provider used when no backend is configured.
type PlaceholderClient struct{}

// Name implements Provider.
func (PlaceholderClient) Name() string { return "placeholder" }

// Generate returns ErrNotImplemented.
func (PlaceholderClient) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	_ = ctx
	_ = req
	return nil, ErrNotImplemented
}

// CleanJSON strips Markdown code fences and surrounding prose some models wrap JSON in.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start > 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// DecodeOutput validates raw model text as JSON.
func DecodeOutput(raw string) (json.RawMessage, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, ErrEmptyOutput
	}
	if !json.Valid([]byte(cleaned)) {
		return nil, ErrInvalidOutput
	}
	return json.RawMessage(cleaned), nil
}

var _ Provider = PlaceholderClient{}
