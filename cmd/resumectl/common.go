package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"resumefit/internal/bootstrap"
	"resumefit/internal/flows"
	"resumefit/internal/shared/config"
	"resumefit/internal/validation"
)

func loadApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return bootstrap.BuildServices(ctx, cfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeError turns action errors into the message a user would see.
func describeError(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid input: %v", verr.Messages())
	}
	var genErr *flows.GenerationError
	if errors.As(err, &genErr) {
		return errors.New(genErr.Message())
	}
	return err
}
