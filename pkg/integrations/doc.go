// Package integrations provides HTTP clients for the APIs heatmap data is
// loaded from.
//
//   - [notion]: Notion database queries (one page per tracked event)
//   - [github]: GitHub contribution calendars
//
// # Client Pattern
//
// API clients embed [Client], which handles:
//   - JSON requests with default headers and a User-Agent
//   - retry of transient failures via [httputil.RetryWithBackoff]
//   - request pacing via [httputil.Limiter]
//   - response caching in any [cache.Cache]
//
// Status codes map to sentinel errors: 404 to [ErrNotFound], 401/403 to
// [ErrUnauthorized], 429 to [errors.RateLimitedError] and 5xx to a
// retryable [ErrNetwork].
//
// [notion]: github.com/matzehuels/heatposter/pkg/integrations/notion
// [github]: github.com/matzehuels/heatposter/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/heatposter/pkg/cache.Cache
// [httputil.RetryWithBackoff]: github.com/matzehuels/heatposter/pkg/httputil.RetryWithBackoff
// [httputil.Limiter]: github.com/matzehuels/heatposter/pkg/httputil.Limiter
// [errors.RateLimitedError]: github.com/matzehuels/heatposter/pkg/errors.RateLimitedError
package integrations
