package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: level, Format: "json"}
	return NewWithWriter(cfg, "watchdog", &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "invalid-level", Format: "json"}, "test", &buf)
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("invalid level should fall back to info, debug was written: %q", buf.String())
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected info line to be written")
	}
}

func TestInfoWritesFields(t *testing.T) {
	l, buf := newJSONLogger(t, "info")
	l.Info("child exited", Fields(FieldPID, 1234, FieldExitCode, 42))

	m := decodeLine(t, buf)
	if m["message"] != "child exited" {
		t.Errorf("expected message 'child exited', got %v", m["message"])
	}
	if m[FieldPID] != float64(1234) {
		t.Errorf("expected pid 1234, got %v", m[FieldPID])
	}
	if m[FieldExitCode] != float64(42) {
		t.Errorf("expected exit_code 42, got %v", m[FieldExitCode])
	}
	if m["service"] != "watchdog" {
		t.Errorf("expected service field, got %v", m["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")
	l.Debug("nope")
	l.Info("nope")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("yes")
	if m := decodeLine(t, buf); m["level"] != "warn" {
		t.Errorf("expected warn level, got %v", m["level"])
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")
	l.WithComponent("watchdog").
		WithFields(Fields(FieldRunID, "abc")).
		WithError(errors.New("boom")).
		Debug("state change")

	m := decodeLine(t, buf)
	if m[FieldComponent] != "watchdog" {
		t.Errorf("expected component 'watchdog', got %v", m[FieldComponent])
	}
	if m[FieldRunID] != "abc" {
		t.Errorf("expected run_id 'abc', got %v", m[FieldRunID])
	}
	if m["error"] != "boom" {
		t.Errorf("expected error 'boom', got %v", m["error"])
	}
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.WithContext(ctx).Info("traced")
	m := decodeLine(t, buf)
	if m[FieldTraceID] != traceID.String() {
		t.Errorf("expected trace_id %s, got %v", traceID, m[FieldTraceID])
	}
	if m[FieldSpanID] != spanID.String() {
		t.Errorf("expected span_id %s, got %v", spanID, m[FieldSpanID])
	}
}

func TestWithContextWithoutSpan(t *testing.T) {
	l := NewNop()
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the same logger when context has no span")
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("nothing happens")
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Level: "debug", Format: "json", Output: "stderr"}, ""},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stderr"}, "logging.level"},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stderr"}, "logging.format"},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, "logging.output"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("expected odd trailing key to be dropped, got %v", f)
	}
	ef := ErrorFields("signal", errors.New("denied"))
	if ef[FieldOperation] != "signal" || ef[FieldError] != "denied" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("run", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
	merged := MergeWithError(nil, errors.New("x"))
	if merged[FieldError] != "x" {
		t.Errorf("expected merged error, got %v", merged)
	}
}
