package main

import (
	"errors"
	"strings"
	"testing"

	"resumefit/internal/flows"
	"resumefit/internal/llm"
	"resumefit/internal/validation"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"analyze": false, "generate": false, "migrate": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	if err := migrateCmd.Args(migrateCmd, []string{"sideways"}); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
	if err := migrateCmd.Args(migrateCmd, []string{"down"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDescribeError(t *testing.T) {
	verr := &validation.Error{Fields: []validation.FieldError{{Field: "tone", Message: "Tone must be one of: professional, creative, technical."}}}
	if got := describeError(verr).Error(); !strings.Contains(got, "Tone must be one of") {
		t.Fatalf("unexpected message %q", got)
	}

	genErr := &flows.GenerationError{Kind: flows.KindUnsupportedFormat, Flow: flows.FlowExtractEntities, Err: llm.ErrUnsupportedMedia}
	if got := describeError(genErr).Error(); got != flows.MessageUnsupportedFormat {
		t.Fatalf("unexpected message %q", got)
	}

	other := errors.New("boom")
	if describeError(other) != other {
		t.Fatalf("expected other errors unchanged")
	}
}
