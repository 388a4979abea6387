package analyses

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"resumefit/internal/shared/storage/object"
	"resumefit/internal/shared/telemetry"
	"resumefit/internal/validation"
)

const archiveTimeout = 10 * time.Second

// Archiver keeps a copy of uploaded resume files in an object store.
type Archiver struct {
	Store object.ObjectStore
	Now   func() time.Time
}

// Archive stores doc and returns its storage key.
func (a *Archiver) Archive(ctx context.Context, doc *validation.Document) (string, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	key := object.ArchiveKey(now(), doc.Data, doc.FileName)

	putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if err := a.Store.Put(putCtx, key, doc.MIMEType, bytes.NewReader(doc.Data), int64(len(doc.Data))); err != nil {
		telemetry.Warn("analysis.archive_failed", map[string]any{
			"storage_key": key,
			"error":       err,
		})
		return "", fmt.Errorf("archive resume: %w", err)
	}
	return key, nil
}

// Open streams a previously archived resume.
func (a *Archiver) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := a.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open archived resume: %w", err)
	}
	return r, nil
}
