package generations

import (
	"errors"

	"resumefit/internal/records"
)

var (
	// ErrUnexpected wraps failures that are neither validation nor generation errors.
	ErrUnexpected = errors.New("unexpected failure while generating resume")
	ErrNotFound   = records.ErrNotFound
)
