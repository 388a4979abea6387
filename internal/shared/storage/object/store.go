package object

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"resumefit/internal/shared/util"
)

// ObjectStore saves and retrieves binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ArchiveKey builds the storage key for an uploaded resume:
// resumes/<yyyy>/<mm>/<dd>/<sha256>_<file name>.
func ArchiveKey(now time.Time, data []byte, fileName string) string {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		name = "resume"
	}
	now = now.UTC()
	return path.Join(
		"resumes",
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		fmt.Sprintf("%02d", now.Day()),
		util.HashContent(data)+"_"+name,
	)
}

// CleanKey rejects absolute keys and traversal.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.TrimSpace(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return clean, nil
}
