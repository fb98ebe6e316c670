// Package ratelimit enforces per-key request quotas by tier. It is a
// collaborator of the decision pipeline, not part of it: the pipeline
// trusts the tier it is handed and never touches this shared state.
package ratelimit

import (
	"context"
	"time"

	"github.com/decisio-ai/decisio/internal/config"
	"github.com/decisio-ai/decisio/internal/triage"
)

// Windows a request can be rejected on.
const (
	WindowMinute = "minute"
	WindowDay    = "day"
)

// TierLimits is the quota for one subscription tier.
type TierLimits struct {
	PerMinute int
	PerDay    int
}

// Result reports a limiter verdict plus the numbers the HTTP layer exposes
// through X-RateLimit-* headers.
type Result struct {
	Allowed         bool
	Window          string // exceeded window when not allowed
	LimitMinute     int
	LimitDay        int
	RemainingMinute int
	RemainingDay    int
	RetryAfter      time.Duration
}

// Limiter decides whether a request identified by key may proceed under its
// tier's quota. Implementations count the request when allowing it.
type Limiter interface {
	Allow(ctx context.Context, key string, tier triage.Tier) (Result, error)
}

// DefaultTierLimits returns the stock per-tier quotas.
func DefaultTierLimits() map[triage.Tier]TierLimits {
	return map[triage.Tier]TierLimits{
		triage.TierFree:       {PerMinute: 10, PerDay: 100},
		triage.TierPro:        {PerMinute: 300, PerDay: 50000},
		triage.TierEnterprise: {PerMinute: 1000, PerDay: 500000},
	}
}

// LimitsFromConfig overlays config overrides on the defaults.
func LimitsFromConfig(cfg config.LimitsConfig) map[triage.Tier]TierLimits {
	limits := DefaultTierLimits()
	for name, override := range cfg.Tiers {
		tier, err := triage.ParseTier(name)
		if err != nil {
			continue // validated at load time
		}
		current := limits[tier]
		if override.PerMinute > 0 {
			current.PerMinute = override.PerMinute
		}
		if override.PerDay > 0 {
			current.PerDay = override.PerDay
		}
		limits[tier] = current
	}
	return limits
}

// minuteRetry returns the wait until the current minute window rolls over.
func minuteRetry(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now)
}

// dayRetry returns the wait until midnight UTC.
func dayRetry(now time.Time) time.Duration {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return midnight.Sub(utc)
}
