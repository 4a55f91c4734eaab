// Package fetcher decorates lazy.PageFetcher functions with cross-cutting
// behavior such as retries, rate limiting, logging, tracing and metrics.
//
// Middlewares compose with Chain; the first middleware is outermost:
//
//	fetch = fetcher.Chain(
//		fetcher.WithLogging[User](log),
//		fetcher.WithRetry[User](resilience.DefaultRetryConfig()),
//		fetcher.WithTimeout[User](5*time.Second),
//	)(fetch)
//	users := lazy.FromPagedFetch(100, 0, fetch)
package fetcher
