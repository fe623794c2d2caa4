//go:build !windows

package process

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sys/unix"

	apperrors "github.com/kbukum/watchdog/errors"
	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/observability"
)

// failingDelivery makes every group signal fail with err and counts the
// attempts.
func failingDelivery(err error, calls *int) Option {
	return func(o *options) {
		o.deliver = func(target, os.Signal) error {
			*calls++
			return err
		}
	}
}

func failureCodes(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	codes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "watchdog.failures" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				code, _ := dp.Attributes.Value(attribute.Key(observability.AttrErrorCode))
				codes[code.AsString()] += dp.Value
			}
		}
	}
	return codes
}

func TestRunSignalFailureKillsChildDirectly(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := observability.NewMetrics(provider.Meter("watchdog-test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	calls := 0
	start := time.Now()
	out, err := Run(context.Background(), Command{Binary: "sleep", Args: []string{"10"}},
		100*time.Millisecond,
		WithLogger(logger.NewNop()),
		WithMetrics(metrics),
		WithGracePeriod(2*time.Second),
		failingDelivery(unix.EPERM, &calls),
	)

	if !errors.Is(err, ErrSupervisor) {
		t.Fatalf("expected supervisor error, got %T: %v", err, err)
	}
	if !errors.Is(err, unix.EPERM) {
		t.Errorf("expected EPERM as cause, got %v", err)
	}
	var se *SupervisorError
	if !errors.As(err, &se) || se.Signal != unix.SIGTERM {
		t.Errorf("expected the graceful signal in the error, got %+v", se)
	}
	if calls != 1 {
		t.Errorf("expected a single delivery attempt, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("fallback kill took %s", elapsed)
	}

	if out == nil {
		t.Fatal("expected an outcome after the direct kill")
	}
	if out.ExitCode != 128+int(unix.SIGKILL) {
		t.Errorf("expected the child to be killed, got exit code %d", out.ExitCode)
	}
	if err := unix.Kill(out.PID, 0); !errors.Is(err, unix.ESRCH) {
		t.Errorf("child %d still exists after Run returned: %v", out.PID, err)
	}

	if got := failureCodes(t, reader)[string(apperrors.ErrCodeSignalFailed)]; got != 1 {
		t.Errorf("expected one SIGNAL_FAILED failure recorded, got %d", got)
	}
}

func TestRunGoneTargetIsNotASupervisorError(t *testing.T) {
	calls := 0
	out, err := Run(context.Background(), Command{Binary: "sleep", Args: []string{"0.3"}},
		100*time.Millisecond,
		WithLogger(logger.NewNop()),
		failingDelivery(errProcessGone, &calls),
	)
	if err != nil {
		t.Fatalf("a vanished target must not fail the run: %v", err)
	}
	if !out.Completed() || out.ExitCode != 0 {
		t.Errorf("expected a completion, got %+v", out)
	}
	if calls != 1 {
		t.Errorf("expected a single delivery attempt, got %d", calls)
	}
}
