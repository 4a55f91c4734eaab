package fetcher_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/fetcher"
	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/resilience"
)

// numbers serves total integers starting at 0.
func numbers(total int) lazy.PageFetcher[int] {
	return func(_ context.Context, batchSize, page int) ([]int, error) {
		var out []int
		for i := page * batchSize; i < (page+1)*batchSize && i < total; i++ {
			out = append(out, i)
		}
		return out, nil
	}
}

func fastRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	return cfg
}

func TestChain_Empty(t *testing.T) {
	fetch := fetcher.Chain[int]()(numbers(3))
	items, err := fetch(context.Background(), 2, 1)
	if err != nil || len(items) != 1 || items[0] != 2 {
		t.Fatalf("expected [2], got %v, err %v", items, err)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(tag string) fetcher.Middleware[int] {
		return func(inner lazy.PageFetcher[int]) lazy.PageFetcher[int] {
			return func(ctx context.Context, batchSize, page int) ([]int, error) {
				order = append(order, tag+":before")
				items, err := inner(ctx, batchSize, page)
				order = append(order, tag+":after")
				return items, err
			}
		}
	}

	fetch := fetcher.Chain(mw("A"), mw("B"), mw("C"))(numbers(10))
	if _, err := fetch(context.Background(), 5, 0); err != nil {
		t.Fatal(err)
	}

	want := "A:before B:before C:before C:after B:after A:after"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWithRetry_RecoversSamePage(t *testing.T) {
	var pages []int
	calls := 0
	flaky := func(ctx context.Context, batchSize, page int) ([]int, error) {
		pages = append(pages, page)
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset")
		}
		return numbers(10)(ctx, batchSize, page)
	}

	fetch := fetcher.WithRetry[int](fastRetry())(flaky)
	items, err := fetch(context.Background(), 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 || items[0] != 4 {
		t.Errorf("expected page 1 items, got %v", items)
	}
	for _, p := range pages {
		if p != 1 {
			t.Errorf("expected every attempt to request page 1, got %v", pages)
			break
		}
	}
}

func TestWithRetry_InsideSequence(t *testing.T) {
	failures := 1
	flaky := func(ctx context.Context, batchSize, page int) ([]int, error) {
		if page == 1 && failures > 0 {
			failures--
			return nil, apperrors.ConnectionFailed("catalog", errors.New("reset"))
		}
		return numbers(5)(ctx, batchSize, page)
	}

	seq := lazy.FromPagedFetch(2, 0, fetcher.WithRetry[int](fastRetry())(flaky))
	got, err := seq.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("expected 5 items, got %v", got)
	}
}

func TestWithRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	fetch := fetcher.WithRetry[int](fastRetry())(func(context.Context, int, int) ([]int, error) {
		calls++
		return nil, apperrors.Unauthorized("bad token")
	})
	if _, err := fetch(context.Background(), 1, 0); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRateLimit(t *testing.T) {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: "test", Rate: 1000, Burst: 1})
	fetch := fetcher.WithRateLimit[int](rl)(numbers(10))
	for page := 0; page < 3; page++ {
		if _, err := fetch(context.Background(), 2, page); err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
	}
}

func TestWithRateLimit_Cancelled(t *testing.T) {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: "test", Rate: 0.001, Burst: 1})
	rl.Allow()

	called := false
	fetch := fetcher.WithRateLimit[int](rl)(func(context.Context, int, int) ([]int, error) {
		called = true
		return nil, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := fetch(ctx, 1, 0); err == nil {
		t.Fatal("expected error when the context expires")
	}
	if called {
		t.Error("expected fetch not to be called")
	}
}

func TestWithTimeout(t *testing.T) {
	slow := func(ctx context.Context, _, _ int) ([]int, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	fetch := fetcher.WithTimeout[int](5 * time.Millisecond)(slow)
	_, err := fetch(context.Background(), 1, 0)
	if !apperrors.HasCode(err, apperrors.ErrCodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Error("expected timeout to be retryable")
	}
}

func TestWithTimeout_FastFetchPasses(t *testing.T) {
	fetch := fetcher.WithTimeout[int](time.Second)(numbers(3))
	items, err := fetch(context.Background(), 3, 0)
	if err != nil || len(items) != 3 {
		t.Fatalf("expected 3 items, got %v, err %v", items, err)
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	fetch := fetcher.WithLogging[int](log)(numbers(3))
	if _, err := fetch(context.Background(), 2, 0); err != nil {
		t.Fatal(err)
	}
	failing := fetcher.WithLogging[int](log)(func(context.Context, int, int) ([]int, error) {
		return nil, errors.New("boom")
	})
	if _, err := failing(context.Background(), 2, 1); err == nil {
		t.Fatal("expected error")
	}

	out := buf.String()
	if !strings.Contains(out, "page fetch ok") {
		t.Errorf("expected success line, got %s", out)
	}
	if !strings.Contains(out, "page fetch failed") || !strings.Contains(out, "boom") {
		t.Errorf("expected failure line with error, got %s", out)
	}
}

func TestWithLogging_NilUsesGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.GetGlobalLogger()
	logger.SetGlobalLogger(logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf))
	defer logger.SetGlobalLogger(prev)

	fetch := fetcher.WithLogging[int](nil)(numbers(3))
	if _, err := fetch(context.Background(), 2, 0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "page fetch ok") {
		t.Errorf("expected the global logger to receive the line, got %q", buf.String())
	}
}

func TestWithBulkhead_RejectsWhenFull(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "test", MaxConcurrent: 1})
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := fetcher.WithBulkhead[int](b)(func(ctx context.Context, batchSize, page int) ([]int, error) {
		close(entered)
		<-release
		return numbers(3)(ctx, batchSize, page)
	})

	done := make(chan error, 1)
	go func() {
		_, err := blocking(context.Background(), 2, 0)
		done <- err
	}()
	<-entered

	_, err := fetcher.WithBulkhead[int](b)(numbers(3))(context.Background(), 2, 0)
	if !errors.Is(err, resilience.ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, err := fetcher.WithBulkhead[int](b)(numbers(3))(context.Background(), 2, 1)
	if err != nil || len(items) != 1 {
		t.Errorf("expected [2] once the slot is free, got %v, err %v", items, err)
	}
}

func TestWithCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "test", MaxFailures: 2, Timeout: time.Hour})
	calls := 0
	fetch := fetcher.WithCircuitBreaker[int](cb)(func(context.Context, int, int) ([]int, error) {
		calls++
		return nil, errors.New("boom")
	})

	for i := 0; i < 2; i++ {
		if _, err := fetch(context.Background(), 1, 0); err == nil {
			t.Fatal("expected error")
		}
	}
	_, err := fetch(context.Background(), 1, 0)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected the open circuit to skip the source, got %d calls", calls)
	}
	if cb.State() != resilience.StateOpen {
		t.Errorf("expected open state, got %s", cb.State())
	}
}

func TestWithCircuitBreaker_IgnoresInvalidArgument(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "test", MaxFailures: 1})
	fetch := fetcher.WithCircuitBreaker[int](cb)(func(context.Context, int, int) ([]int, error) {
		return nil, apperrors.InvalidArgument("batch size", "must be positive")
	})
	for i := 0; i < 3; i++ {
		_, _ = fetch(context.Background(), 0, 0)
	}
	if cb.State() != resilience.StateClosed {
		t.Errorf("expected caller errors to leave the circuit closed, got %s", cb.State())
	}
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	fetch := fetcher.WithTracing[int]("numbers")(numbers(3))
	seq := lazy.FromPagedFetch(2, 0, fetch)
	if _, err := seq.Collect(context.Background()); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected one span per page, got %d", len(spans))
	}
	if spans[0].Name != observability.SpanPageFetch {
		t.Errorf("expected span %q, got %q", observability.SpanPageFetch, spans[0].Name)
	}
}

func TestWithMetrics(t *testing.T) {
	inst, err := observability.NewFetchInstruments(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	fetch := fetcher.WithMetrics[int](inst, "numbers")(numbers(3))
	items, err := fetch(context.Background(), 5, 0)
	if err != nil || len(items) != 3 {
		t.Fatalf("expected 3 items, got %v, err %v", items, err)
	}
}
