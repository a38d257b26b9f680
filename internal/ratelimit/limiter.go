package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding-window rate limiter keyed by caller.
// Expired hits are pruned inline on each check; there is no background
// sweep, so an idle limiter costs nothing.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
}

// Decision is the outcome of one rate-limit check, with the values the
// HTTP layer needs for X-RateLimit-* and Retry-After headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// New creates a limiter allowing limit hits per key per window. A nil now
// defaults to time.Now; tests inject a fake clock.
func New(limit int, window time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		limit:  limit,
		window: window,
		now:    now,
		hits:   make(map[string][]time.Time),
	}
}

// Allow records a hit for key if the key is under its limit and reports
// the decision either way.
func (l *Limiter) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(key, now)

	d := Decision{Limit: l.limit, ResetAt: now.Add(l.window)}
	if len(recent) > 0 {
		d.ResetAt = recent[0].Add(l.window)
	}

	if len(recent) >= l.limit {
		d.Remaining = 0
		return d
	}

	recent = append(recent, now)
	l.hits[key] = recent
	d.Allowed = true
	d.Remaining = l.limit - len(recent)
	return d
}

// prune drops hits older than the window and returns what remains. The
// caller holds the mutex. Emptied keys are deleted so the map does not
// grow with one-off callers.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	hits := l.hits[key]
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]
	if len(hits) == 0 {
		delete(l.hits, key)
	} else {
		l.hits[key] = hits
	}
	return hits
}
