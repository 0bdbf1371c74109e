package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Rule allows Limit hits per key in each fixed Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Result describes the decision for a single hit.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits per key.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}

func decide(count int64, rule Rule, ttl time.Duration) Result {
	res := Result{Allowed: count <= int64(rule.Limit)}
	if remaining := int64(rule.Limit) - count; remaining > 0 {
		res.Remaining = int(remaining)
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res
}

const pruneThreshold = 4096

type window struct {
	start time.Time
	count int64
}

// MemoryLimiter keeps fixed windows in process memory. Limits are per
// instance when the service is scaled out.
type MemoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]window
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, windows: make(map[string]window)}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= rule.Window {
		if len(l.windows) >= pruneThreshold {
			l.prune(now, rule.Window)
		}
		w = window{start: now}
	}
	w.count++
	l.windows[key] = w

	return decide(w.count, rule, w.start.Add(rule.Window).Sub(now)), nil
}

func (l *MemoryLimiter) prune(now time.Time, ttl time.Duration) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= ttl {
			delete(l.windows, key)
		}
	}
}
