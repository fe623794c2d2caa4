// Package timer measures elapsed wall-clock time.
package timer

import (
	"errors"
	"sync"
	"time"
)

// ErrNotStarted is returned by Duration on a Timer that was never started.
var ErrNotStarted = errors.New("timer has not started")

// Timer records a start and an optional stop instant. The zero value is a
// timer that has not started. A Timer is safe for concurrent use.
type Timer struct {
	mu    sync.Mutex
	start time.Time
	end   time.Time
	now   func() time.Time
}

// Start returns a running timer.
func Start() *Timer {
	t := &Timer{}
	t.Start()
	return t
}

// Start (re)starts the timer and clears any previous stop instant.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = t.clock()
	t.end = time.Time{}
}

// Stop freezes the timer and returns the elapsed duration.
func (t *Timer) Stop() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.start.IsZero() {
		return 0, ErrNotStarted
	}
	if t.end.IsZero() {
		t.end = t.clock()
	}
	return t.end.Sub(t.start), nil
}

// Duration returns the time between start and stop, or between start and
// now while the timer is still running.
func (t *Timer) Duration() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.start.IsZero() {
		return 0, ErrNotStarted
	}
	if t.end.IsZero() {
		return t.clock().Sub(t.start), nil
	}
	return t.end.Sub(t.start), nil
}

// Elapsed is Duration for timers known to be started.
func (t *Timer) Elapsed() time.Duration {
	d, _ := t.Duration()
	return d
}

func (t *Timer) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}
