package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/decisio-ai/decisio/internal/triage"
)

// redisLimiter shares fixed minute/day windows across nodes via Redis
// INCR+EXPIRE. On Redis errors it fails open: availability of the decision
// endpoint outranks strict quota enforcement.
type redisLimiter struct {
	client *redis.Client
	limits map[triage.Tier]TierLimits
	now    func() time.Time
	log    zerolog.Logger
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client *redis.Client, limits map[triage.Tier]TierLimits, log zerolog.Logger) Limiter {
	if limits == nil {
		limits = DefaultTierLimits()
	}
	return &redisLimiter{
		client: client,
		limits: limits,
		now:    time.Now,
		log:    log,
	}
}

func (r *redisLimiter) Allow(ctx context.Context, key string, tier triage.Tier) (Result, error) {
	limits := r.limits[tier]
	now := r.now()

	minuteKey := fmt.Sprintf("decisio:rl:%s:m:%d", key, now.Unix()/60)
	dayKey := fmt.Sprintf("decisio:rl:%s:d:%s", key, now.UTC().Format("2006-01-02"))

	pipe := r.client.TxPipeline()
	minuteIncr := pipe.Incr(ctx, minuteKey)
	pipe.Expire(ctx, minuteKey, 2*time.Minute)
	dayIncr := pipe.Incr(ctx, dayKey)
	pipe.Expire(ctx, dayKey, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Warn().Err(err).Msg("rate limiter redis error, failing open")
		return Result{
			Allowed:         true,
			LimitMinute:     limits.PerMinute,
			LimitDay:        limits.PerDay,
			RemainingMinute: limits.PerMinute,
			RemainingDay:    limits.PerDay,
		}, nil
	}

	minuteCount := int(minuteIncr.Val())
	dayCount := int(dayIncr.Val())

	res := Result{
		Allowed:         true,
		LimitMinute:     limits.PerMinute,
		LimitDay:        limits.PerDay,
		RemainingMinute: max(0, limits.PerMinute-minuteCount),
		RemainingDay:    max(0, limits.PerDay-dayCount),
	}

	// The increment above still counted the rejected request; fixed windows
	// make that safe because the window resets fully.
	if minuteCount > limits.PerMinute {
		res.Allowed = false
		res.Window = WindowMinute
		res.RetryAfter = minuteRetry(now)
	} else if dayCount > limits.PerDay {
		res.Allowed = false
		res.Window = WindowDay
		res.RetryAfter = dayRetry(now)
	}

	return res, nil
}
