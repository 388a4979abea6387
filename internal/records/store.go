package records

import (
	"context"
	"encoding/json"
)

// Store is an append-only document store.
type Store interface {
	// Insert stores document and returns the record with its store-assigned id and timestamp.
	Insert(ctx context.Context, collection string, document json.RawMessage) (Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	// List returns records newest-first.
	List(ctx context.Context, collection string, limit, offset int) ([]Record, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ClampPage applies the default and maximum page size and floors offset at 0.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
