package records

import (
	"context"
	"encoding/json"
	"time"

	"resumefit/internal/shared/metrics"
	"resumefit/internal/shared/telemetry"
)

const defaultWriteTimeout = 5 * time.Second

// Service persists results without ever failing the caller.
type Service struct {
	store        Store
	writeTimeout time.Duration
}

// NewService wraps store.
func NewService(store Store) *Service {
	return &Service{store: store, writeTimeout: defaultWriteTimeout}
}

// Save stores doc in collection and returns the new record id, or nil when
// the write failed. Failures are logged and counted. The write is bounded
// by its own timeout and is not canceled with ctx.
func (s *Service) Save(ctx context.Context, collection string, doc any) *string {
	encoded, err := json.Marshal(doc)
	if err != nil {
		s.fail(collection, err)
		return nil
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	rec, err := s.store.Insert(writeCtx, collection, encoded)
	if err != nil {
		s.fail(collection, err)
		return nil
	}
	metrics.IncRecordWrite(collection, metrics.OutcomeSuccess)
	telemetry.Info("record.saved", map[string]any{
		"collection": collection,
		"record_id":  rec.ID,
	})
	id := rec.ID
	return &id
}

// Get returns a stored record.
func (s *Service) Get(ctx context.Context, collection, id string) (Record, error) {
	return s.store.Get(ctx, collection, id)
}

// List returns stored records newest-first.
func (s *Service) List(ctx context.Context, collection string, limit, offset int) ([]Record, error) {
	return s.store.List(ctx, collection, limit, offset)
}

func (s *Service) fail(collection string, err error) {
	metrics.IncRecordWrite(collection, metrics.OutcomeFailure)
	telemetry.Error("record.save_failed", map[string]any{
		"collection": collection,
		"error":      err,
	})
}
