package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in dev and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]Record),
		now:     time.Now,
	}
}

// Insert implements Store.
func (s *MemoryStore) Insert(ctx context.Context, collection string, document json.RawMessage) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if !validCollection(collection) {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	rec := Record{
		ID:         uuid.NewString(),
		Collection: collection,
		Document:   append(json.RawMessage(nil), document...),
		CreatedAt:  s.now().UTC(),
	}
	s.mu.Lock()
	s.records[collection] = append(s.records[collection], rec)
	s.mu.Unlock()
	return rec, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records[collection] {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, collection string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = ClampPage(limit, offset)

	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.records[collection]
	out := make([]Record, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
