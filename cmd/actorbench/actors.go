package main

import (
	"slices"
	"sync/atomic"

	"github.com/codewandler/actr-go/core/actor"
)

// Counter is the workload actor of the call, send and restart phases.
type Counter struct {
	n     int
	notes int
}

func NewCounter() *Counter { return &Counter{} }

type (
	// Incr increments the counter and returns the new value.
	Incr struct{}
	// Note is a fire-and-forget message.
	Note struct{}
	// Crash makes the handler panic.
	Crash struct{}
	// Notes returns the number of notes seen.
	Notes struct{}
)

func (Incr) Handle(_ *actor.Context[*Counter], c *Counter) (int, error) {
	c.n++
	return c.n, nil
}

func (Note) Handle(_ *actor.Context[*Counter], c *Counter) (struct{}, error) {
	c.notes++
	return struct{}{}, nil
}

func (Crash) Handle(*actor.Context[*Counter], *Counter) (struct{}, error) {
	panic("crash requested")
}

func (Notes) Handle(_ *actor.Context[*Counter], c *Counter) (int, error) {
	return c.notes, nil
}

// Listener counts the ticks it receives.
type Listener struct {
	received *atomic.Int64
}

// Tick is published to all listeners.
type Tick struct {
	Seq  int
	Path []string
}

func (t Tick) Clone() Tick {
	return Tick{Seq: t.Seq, Path: slices.Clone(t.Path)}
}

func (t Tick) Handle(_ *actor.Context[*Listener], l *Listener) (struct{}, error) {
	l.received.Add(1)
	return struct{}{}, nil
}
