package timer

import (
	"errors"
	"testing"
	"time"
)

func TestDurationNotStarted(t *testing.T) {
	var tm Timer
	if _, err := tm.Duration(); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if _, err := tm.Stop(); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted from Stop, got %v", err)
	}
	if tm.Elapsed() != 0 {
		t.Fatal("expected zero elapsed for unstarted timer")
	}
}

func TestStopFreezesDuration(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	tm := &Timer{now: func() time.Time { return current }}
	tm.Start()

	current = base.Add(500 * time.Millisecond)
	d, err := tm.Duration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 500*time.Millisecond {
		t.Fatalf("expected running duration 500ms, got %v", d)
	}

	stopped, _ := tm.Stop()
	current = base.Add(2 * time.Second)
	if stopped != 500*time.Millisecond || tm.Elapsed() != 500*time.Millisecond {
		t.Fatalf("expected frozen 500ms, got stop=%v elapsed=%v", stopped, tm.Elapsed())
	}

	// A second Stop keeps the first stop instant.
	again, _ := tm.Stop()
	if again != 500*time.Millisecond {
		t.Fatalf("expected 500ms after second stop, got %v", again)
	}
}

func TestRealClock(t *testing.T) {
	tm := Start()
	time.Sleep(50 * time.Millisecond)
	d, err := tm.Stop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d < 50*time.Millisecond || d > time.Second {
		t.Fatalf("expected about 50ms, got %v", d)
	}
}
