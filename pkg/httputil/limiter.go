package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests with a token bucket. A nil *Limiter
// never blocks.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter allows perSecond requests per second with the given burst.
// A non-positive rate disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{lim: rate.NewLimiter(rate.Inf, 0)}
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

// NewLimiterEvery allows one request per interval.
func NewLimiterEvery(interval time.Duration) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.lim.Wait(ctx)
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.lim.Allow()
}
