// Package resilience provides retry with backoff, token-bucket rate
// limiting, a circuit breaker and a bulkhead for page fetchers.
//
// Sequences never retry on their own. A fetcher that should survive
// transient failures wraps its calls instead:
//
//	page, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() ([]User, error) {
//	    return api.ListUsers(ctx, batchSize, page)
//	})
//
// The fetcher package builds ready-made middlewares on top of these.
package resilience
