package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// TMDBRateLimiter is a token bucket in front of TMDB. TMDB allows 50
// requests per 10 seconds; the default configuration uses 40.
type TMDBRateLimiter struct {
	limiter     *rate.Limiter
	maxRequests int
	window      time.Duration
}

func NewTMDBRateLimiter(maxRequests int, window time.Duration) *TMDBRateLimiter {
	if maxRequests <= 0 {
		maxRequests = 40
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &TMDBRateLimiter{
		limiter:     rate.NewLimiter(rate.Every(window/time.Duration(maxRequests)), maxRequests),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *TMDBRateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// GetStats reports the bucket state for the health endpoint.
func (r *TMDBRateLimiter) GetStats() map[string]any {
	return map[string]any{
		"available_tokens": int(r.limiter.Tokens()),
		"max_tokens":       r.maxRequests,
		"window":           r.window.String(),
	}
}
