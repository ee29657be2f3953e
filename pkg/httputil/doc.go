// Package httputil provides request pacing and retry for the API clients
// that feed heatmap sources.
//
//   - [Retry]: exponential backoff for errors wrapped in [RetryableError],
//     honoring Retry-After hints from [errors.RateLimitedError]
//   - [Limiter]: a token bucket shared by every request to one API
//
// Notion allows about three requests per second per integration:
//
//	lim := httputil.NewLimiter(3, 1)
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
//
// [errors.RateLimitedError]: github.com/matzehuels/heatposter/pkg/errors.RateLimitedError
package httputil
