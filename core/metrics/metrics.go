// Package metrics holds the small instrumentation vocabulary the runtime
// reports through. Backends (see adapters/prometheus) implement it; the
// runtime itself never depends on a concrete metrics library.
package metrics

import "time"

// Timer measures one operation. Typical use:
//
//	defer m.MessageDuration("Ping").ObserveDuration()
type Timer interface {
	ObserveDuration()
}

// TimerFunc adapts a plain function to Timer.
type TimerFunc func()

func (f TimerFunc) ObserveDuration() { f() }

// NewTimer starts a Timer that hands the elapsed time to observe.
func NewTimer(observe func(time.Duration)) Timer {
	start := time.Now()
	return TimerFunc(func() { observe(time.Since(start)) })
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

// NopTimer returns a Timer that records nothing.
func NopTimer() Timer { return nopTimer{} }
