package util

import (
	"errors"
	"strings"
	"unicode"
)

// maxFileNameRunes bounds names used in storage keys and download headers.
const maxFileNameRunes = 128

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes an uploaded file name safe to embed in an object key
// or a Content-Disposition header. Traversal attempts are rejected; path
// separators become underscores; quotes and control characters are dropped.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r == '"' || unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if runes := []rune(cleaned); len(runes) > maxFileNameRunes {
		cleaned = string(runes[len(runes)-maxFileNameRunes:])
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", ErrInvalidFileName
	}
	return cleaned, nil
}
