package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"resumefit/internal/shared/telemetry"
)

const DefaultRetryBaseDelay = 300 * time.Millisecond

// Retrying wraps a Provider with a per-attempt timeout and bounded retries on
// transient failures.
type Retrying struct {
	Base        Provider
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrying returns base wrapped with the given policy.
func NewRetrying(base Provider, maxAttempts int, timeout time.Duration) *Retrying {
	return &Retrying{
		Base:        base,
		MaxAttempts: maxAttempts,
		BaseDelay:   DefaultRetryBaseDelay,
		Timeout:     timeout,
	}
}

// Name implements Provider.
func (r *Retrying) Name() string { return r.Base.Name() }

// Generate implements Provider.
func (r *Retrying) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := r.once(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == attempts || ctx.Err() != nil || !ShouldRetry(err) {
			break
		}
		delay := r.BaseDelay * time.Duration(attempt)
		telemetry.Warn("llm.retry", map[string]any{
			"provider":  r.Base.Name(),
			"operation": req.Operation,
			"attempt":   attempt,
			"delay_ms":  delay.Milliseconds(),
			"error":     err,
		})
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *Retrying) once(ctx context.Context, req Request) (json.RawMessage, error) {
	if r.Timeout <= 0 {
		return r.Base.Generate(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	return r.Base.Generate(attemptCtx, req)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShouldRetry reports whether err is a transient provider failure.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupportedMedia) || errors.Is(err, ErrNotImplemented) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "server_error") || strings.Contains(msg, "client.timeout") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof") {
		return true
	}
	return false
}

var _ Provider = (*Retrying)(nil)
