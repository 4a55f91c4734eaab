package fetcher

import (
	"time"

	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/resilience"
)

// ResilienceConfig bundles optional policies for a page fetcher.
// Nil or zero fields are skipped, so the zero value is a passthrough.
type ResilienceConfig struct {
	// RateLimiter limits how often the source is hit.
	RateLimiter *resilience.RateLimiterConfig
	// Bulkhead bounds concurrent fetches against the source.
	Bulkhead *resilience.BulkheadConfig
	// CircuitBreaker fails fast while the source keeps failing.
	CircuitBreaker *resilience.CircuitBreakerConfig
	// Retry retries failed fetches with exponential backoff.
	Retry *resilience.RetryConfig
	// Timeout bounds each individual fetch attempt.
	Timeout time.Duration
}

// IsEmpty reports whether no policy is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.RateLimiter == nil && c.Bulkhead == nil && c.CircuitBreaker == nil &&
		c.Retry == nil && c.Timeout <= 0
}

// WithResilience applies the configured policies, outermost first:
// rate limiter, bulkhead, circuit breaker, retry, per-attempt timeout.
// The rate limiter sits outside so a retry storm cannot bypass it, and the
// breaker sees one outcome per fetch rather than one per attempt.
//
// Every call builds its own limiter, bulkhead and breaker. To share them
// across sequences reading the same source, build the middleware once and
// reuse it.
func WithResilience[T any](cfg ResilienceConfig) Middleware[T] {
	if cfg.IsEmpty() {
		return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] { return inner }
	}
	var mws []Middleware[T]
	if cfg.RateLimiter != nil {
		mws = append(mws, WithRateLimit[T](resilience.NewRateLimiter(*cfg.RateLimiter)))
	}
	if cfg.Bulkhead != nil {
		mws = append(mws, WithBulkhead[T](resilience.NewBulkhead(*cfg.Bulkhead)))
	}
	if cfg.CircuitBreaker != nil {
		mws = append(mws, WithCircuitBreaker[T](resilience.NewCircuitBreaker(*cfg.CircuitBreaker)))
	}
	if cfg.Retry != nil {
		mws = append(mws, WithRetry[T](*cfg.Retry))
	}
	if cfg.Timeout > 0 {
		mws = append(mws, WithTimeout[T](cfg.Timeout))
	}
	return Chain(mws...)
}
