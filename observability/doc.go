// Package observability wires OpenTelemetry tracing and metrics into
// supervised runs.
//
// Every process.Run opens a span named "process.run" on the global tracer
// provider, so runs are traced as soon as a provider is installed:
//
//	tel, err := observability.Init(ctx, observability.DefaultConfig("watchdog"))
//	defer tel.Shutdown(ctx)
//
// Metrics are recorded through a Metrics value handed to the supervisor:
//
//	metrics, err := observability.NewMetrics(observability.Meter("watchdog"))
//	sup, err := process.New(cfg, process.WithMetrics(metrics))
package observability
