package ratelimit

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/pbaille/thoughts/internal/domain"
)

const defaultMaxKeys = 10000

// RateLimiter holds one token bucket per key (client IP, token, ...).
// The least recently seen keys are evicted past maxKeys.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter. rps <= 0 allows everything.
func NewRateLimiter(rps int, burst int) *RateLimiter {
	cache, _ := lru.New[string, *rate.Limiter](defaultMaxKeys)
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: cache,
		rps:      limit,
		burst:    burst,
	}
}

// GetLimiter returns a limiter for the given key
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter
}

// Allow checks if the request is allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.GetLimiter(key).Allow()
}

// CheckLimit returns ErrRateLimited when key is over its budget
func (rl *RateLimiter) CheckLimit(key string) error {
	if !rl.Allow(key) {
		return domain.NewAppError(domain.ErrRateLimited, "too many requests", 429)
	}
	return nil
}

// Len reports how many keys are tracked
func (rl *RateLimiter) Len() int {
	return rl.limiters.Len()
}
