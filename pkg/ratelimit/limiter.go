package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore hands out one limiter per key, e.g. per upstream provider.
type LimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	burst    int
}

func NewLimiterStore(r rate.Limit, burst int) *LimiterStore {
	return &LimiterStore{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}
}

// PerMinute converts a requests-per-minute budget into a rate. Non-positive
// budgets are unlimited.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

// SetLimit overrides the rate for key.
func (s *LimiterStore) SetLimit(key string, r rate.Limit, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[key] = rate.NewLimiter(r, burst)
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists := s.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(s.r, s.burst)
	s.limiters[key] = limiter
	return limiter
}

// Wait blocks until key has a token or ctx is done. It reports whether the
// caller had to wait.
func (s *LimiterStore) Wait(ctx context.Context, key string) (bool, error) {
	limiter := s.GetLimiter(key)
	if limiter.Allow() {
		return false, nil
	}
	return true, limiter.Wait(ctx)
}
