package llm

import (
	"context"
	"errors"
	"fmt"

	"resumefit/internal/extract"
)

// MediaAsText converts an attachment into plain text for providers that
// cannot ingest the document natively.
func MediaAsText(ctx context.Context, m *Media) (string, error) {
	if m == nil {
		return "", nil
	}
	text, err := extract.TextFromBytes(ctx, m.Data, m.MIMEType, m.FileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, m.MIMEType)
		}
		return "", err
	}
	return text, nil
}
