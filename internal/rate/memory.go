package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter is a fixed window limiter backed by an in-process cache.
// Single-replica deployments use it when no Redis address is configured.
type MemoryLimiter struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)
	cacheKey := fmt.Sprintf("%s:%d", key, winStart.Unix())

	l.mu.Lock()
	var hits int64 = 1
	if v, ok := l.cache.Get(cacheKey); ok {
		hits = v.(int64) + 1
	}
	l.cache.Set(cacheKey, hits, winEnd.Sub(now))
	l.mu.Unlock()

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   winEnd.Sub(now),
	}
	if !allowed {
		res.RetryAfter = winEnd.Sub(now)
	}
	return res, nil
}
