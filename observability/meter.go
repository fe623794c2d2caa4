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

	"github.com/kbukum/watchdog/logger"
)

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config Config) (*sdkmetric.MeterProvider, error) {
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

	res, err := newResource(config)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
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

// Metrics holds the instruments recorded for supervised runs. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	signals  metric.Int64Counter
	failures metric.Int64Counter
}

// NewMetrics creates the run instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter("watchdog.runs",
		metric.WithDescription("Supervised runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating watchdog.runs counter: %w", err)
	}

	duration, err := meter.Float64Histogram("watchdog.run.duration",
		metric.WithDescription("Wall-clock duration of supervised runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating watchdog.run.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("watchdog.runs.active",
		metric.WithDescription("Runs whose child is currently alive"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating watchdog.runs.active counter: %w", err)
	}

	signals, err := meter.Int64Counter("watchdog.signals",
		metric.WithDescription("Termination signals delivered by the watchdog"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating watchdog.signals counter: %w", err)
	}

	failures, err := meter.Int64Counter("watchdog.failures",
		metric.WithDescription("Runs that failed to launch or to supervise"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating watchdog.failures counter: %w", err)
	}

	return &Metrics{
		runs:     runs,
		duration: duration,
		active:   active,
		signals:  signals,
		failures: failures,
	}, nil
}

// RecordStart marks a child as alive.
func (m *Metrics) RecordStart(ctx context.Context, binary string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrBinary, binary)))
}

// RecordOutcome marks a child as gone and records how its run ended.
func (m *Metrics) RecordOutcome(ctx context.Context, binary, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	bin := attribute.String(AttrBinary, binary)
	m.active.Add(ctx, -1, metric.WithAttributes(bin))
	m.runs.Add(ctx, 1, metric.WithAttributes(bin, attribute.String(AttrOutcome, outcome)))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(bin, attribute.String(AttrOutcome, outcome)))
}

// RecordSignal counts a signal delivered to a child's process group.
func (m *Metrics) RecordSignal(ctx context.Context, binary, signal string) {
	if m == nil {
		return
	}
	m.signals.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBinary, binary),
		attribute.String(AttrSignal, signal),
	))
}

// RecordFailure counts a launch or supervision failure by error code.
func (m *Metrics) RecordFailure(ctx context.Context, binary, code string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBinary, binary),
		attribute.String(AttrErrorCode, code),
	))
}
