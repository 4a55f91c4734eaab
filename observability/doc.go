// Package observability provides OpenTelemetry tracing and metrics for page fetching.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("catalog-sync"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("catalog-sync"))
//	defer mp.Shutdown(ctx)
//
//	inst, err := observability.NewFetchInstruments(observability.Meter("catalog-sync"))
//	fetch = fetcher.Chain(fetcher.WithMetrics[Item](inst, "catalog"))(fetch)
package observability
