package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/decisio-ai/decisio/internal/triage"
)

// memoryLimiter is the default single-node limiter: fixed minute and UTC-day
// windows guarded by a mutex. Stale entries are dropped lazily on access.
type memoryLimiter struct {
	limits map[triage.Tier]TierLimits
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	minute      time.Time
	minuteCount int
	day         string // UTC date, yyyy-mm-dd
	dayCount    int
}

// NewMemory creates an in-memory limiter over the given tier quotas.
func NewMemory(limits map[triage.Tier]TierLimits) Limiter {
	if limits == nil {
		limits = DefaultTierLimits()
	}
	return &memoryLimiter{
		limits:  limits,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string, tier triage.Tier) (Result, error) {
	limits := m.limits[tier]
	now := m.now()
	minute := now.Truncate(time.Minute)
	day := now.UTC().Format("2006-01-02")

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	if !e.minute.Equal(minute) {
		e.minute = minute
		e.minuteCount = 0
	}
	if e.day != day {
		e.day = day
		e.dayCount = 0
	}

	res := Result{
		Allowed:     true,
		LimitMinute: limits.PerMinute,
		LimitDay:    limits.PerDay,
	}

	if e.minuteCount >= limits.PerMinute {
		res.Allowed = false
		res.Window = WindowMinute
		res.RetryAfter = minuteRetry(now)
	} else if e.dayCount >= limits.PerDay {
		res.Allowed = false
		res.Window = WindowDay
		res.RetryAfter = dayRetry(now)
	} else {
		e.minuteCount++
		e.dayCount++
	}

	res.RemainingMinute = max(0, limits.PerMinute-e.minuteCount)
	res.RemainingDay = max(0, limits.PerDay-e.dayCount)
	return res, nil
}
