package health

import (
	"context"
	"time"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB       Pinger
	Provider string
	Store    string
}

// NewService constructs a new health service. db may be nil when records
// are kept in memory.
func NewService(db Pinger, provider, store string) *Service {
	return &Service{DB: db, Provider: provider, Store: store}
}

// Status reports process health and the state of the record store.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	out := map[string]any{
		"ok":       true,
		"provider": s.Provider,
		"store":    s.Store,
	}
	if s.DB == nil {
		return out, true
	}
	pingCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		out["ok"] = false
		out["database"] = "unreachable"
		return out, false
	}
	out["database"] = "ok"
	return out, true
}
