package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"resumefit/internal/shared/telemetry"
)

// RedisLimiter is a fixed-window limiter shared across API replicas.
// Each window admits rule.Burst requests and lasts Burst/Rate seconds.
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
	now    func() time.Time
}

// NewRedisLimiter parses a redis:// URL and returns a limiter backed by it.
func NewRedisLimiter(redisURL string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisLimiter{Client: redis.NewClient(opts), Prefix: "resumefit:ratelimit:"}, nil
}

// Allow fails open when Redis is unreachable.
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.Client == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	window := windowFor(rule)
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	slot := now().UnixNano() / int64(window)
	redisKey := l.Prefix + key + ":" + strconv.FormatInt(slot, 10)

	count, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		telemetry.Warn("ratelimit.redis_unavailable", map[string]any{"error": err})
		return true, 0
	}
	if count == 1 {
		if err := l.Client.PExpire(ctx, redisKey, window).Err(); err != nil {
			telemetry.Warn("ratelimit.redis_expire_failed", map[string]any{"error": err})
		}
	}
	if count <= int64(rule.Burst) {
		return true, 0
	}
	ttl, err := l.Client.PTTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return false, ttl
}

func windowFor(rule RateLimitRule) time.Duration {
	w := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	if w < time.Second {
		w = time.Second
	}
	return w
}

var _ Limiter = (*RedisLimiter)(nil)
