package analyses

import (
	"errors"

	"resumefit/internal/records"
)

var (
	// ErrUnexpected wraps failures that are neither validation nor generation errors.
	ErrUnexpected = errors.New("unexpected failure while analyzing resume")
	ErrNotFound   = records.ErrNotFound

	// ErrNoArchivedResume means the analysis has no stored resume file to serve.
	ErrNoArchivedResume = errors.New("analysis has no archived resume")
)
