package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/lazyseq/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// FetchInstruments holds the instruments recorded around page fetches.
type FetchInstruments struct {
	pagesFetched  metric.Int64Counter
	itemsFetched  metric.Int64Counter
	fetchErrors   metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// NewFetchInstruments creates the page fetch instruments on the given meter.
func NewFetchInstruments(meter metric.Meter) (*FetchInstruments, error) {
	pagesFetched, err := meter.Int64Counter("lazyseq.pages_fetched",
		metric.WithDescription("Total number of pages fetched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pages_fetched counter: %w", err)
	}

	itemsFetched, err := meter.Int64Counter("lazyseq.items_fetched",
		metric.WithDescription("Total number of items returned by page fetches"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating items_fetched counter: %w", err)
	}

	fetchErrors, err := meter.Int64Counter("lazyseq.fetch_errors",
		metric.WithDescription("Total number of failed page fetches"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch_errors counter: %w", err)
	}

	fetchDuration, err := meter.Float64Histogram("lazyseq.fetch_duration",
		metric.WithDescription("Duration of page fetches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch_duration histogram: %w", err)
	}

	return &FetchInstruments{
		pagesFetched:  pagesFetched,
		itemsFetched:  itemsFetched,
		fetchErrors:   fetchErrors,
		fetchDuration: fetchDuration,
	}, nil
}

// RecordFetch records one completed page fetch for source.
func (m *FetchInstruments) RecordFetch(ctx context.Context, source string, items int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrSource, source),
		attribute.String(AttrStatus, status),
	)
	m.fetchDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.fetchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrSource, source)))
		return
	}
	m.pagesFetched.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrSource, source)))
	m.itemsFetched.Add(ctx, int64(items), metric.WithAttributes(attribute.String(AttrSource, source)))
}
