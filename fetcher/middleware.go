package fetcher

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/resilience"
)

// Middleware transforms a page fetcher by wrapping it.
type Middleware[T any] func(lazy.PageFetcher[T]) lazy.PageFetcher[T]

// Chain composes multiple middlewares into one. Middlewares are applied
// in order: the first middleware is outermost.
//
// Chain(a, b, c)(fetch) is equivalent to a(b(c(fetch))).
func Chain[T any](middlewares ...Middleware[T]) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// WithRetry retries a failed page fetch according to cfg.
// The same page is requested again on every attempt.
func WithRetry[T any](cfg resilience.RetryConfig) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			return resilience.Retry(ctx, cfg, func() ([]T, error) {
				return inner(ctx, batchSize, page)
			})
		}
	}
}

// WithRateLimit waits for a token from rl before every fetch.
func WithRateLimit[T any](rl *resilience.RateLimiter) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			if err := rl.Wait(ctx); err != nil {
				return nil, err
			}
			return inner(ctx, batchSize, page)
		}
	}
}

// WithBulkhead runs every fetch inside b, bounding how many fetches
// against the source are in flight at once.
func WithBulkhead[T any](b *resilience.Bulkhead) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			return resilience.ExecuteWithResult(ctx, b, func() ([]T, error) {
				return inner(ctx, batchSize, page)
			})
		}
	}
}

// WithCircuitBreaker fails fetches fast while cb is open.
func WithCircuitBreaker[T any](cb *resilience.CircuitBreaker) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			return resilience.Call(cb, func() ([]T, error) {
				return inner(ctx, batchSize, page)
			})
		}
	}
}

// WithTimeout bounds every fetch by d.
func WithTimeout[T any](d time.Duration) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			items, err := inner(ctx, batchSize, page)
			if err != nil && ctx.Err() == context.DeadlineExceeded {
				return nil, apperrors.Timeout("page fetch").WithCause(err)
			}
			return items, err
		}
	}
}

// WithLogging logs each fetch with its page, item count and duration.
// A nil logger selects the global logger.
func WithLogging[T any](log *logger.Logger) Middleware[T] {
	log = logger.OrGlobal(log)
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			start := time.Now()
			items, err := inner(ctx, batchSize, page)
			fields := logger.MergeWithDuration(logger.PageFields(page, batchSize, len(items)), time.Since(start))
			if err != nil {
				log.Error("page fetch failed", logger.MergeWithError(fields, err))
			} else {
				log.Debug("page fetch ok", fields)
			}
			return items, err
		}
	}
}

// WithTracing wraps each fetch in a span named after source.
func WithTracing[T any](source string) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			ctx, span := observability.StartSpan(ctx, observability.SpanPageFetch)
			defer span.End()
			span.SetAttributes(
				attribute.String(observability.AttrSource, source),
				attribute.Int(observability.AttrPage, page),
				attribute.Int(observability.AttrBatchSize, batchSize),
			)

			items, err := inner(ctx, batchSize, page)
			if err != nil {
				observability.SetSpanError(ctx, err)
				return items, err
			}
			span.SetAttributes(attribute.Int(observability.AttrItems, len(items)))
			return items, nil
		}
	}
}

// WithMetrics records every fetch on inst under source.
func WithMetrics[T any](inst *observability.FetchInstruments, source string) Middleware[T] {
	return func(inner lazy.PageFetcher[T]) lazy.PageFetcher[T] {
		return func(ctx context.Context, batchSize, page int) ([]T, error) {
			start := time.Now()
			items, err := inner(ctx, batchSize, page)
			inst.RecordFetch(ctx, source, len(items), time.Since(start), err)
			return items, err
		}
	}
}
