package actor

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Supervisor keeps an actor alive by restarting it from factory whenever
// its instance stops, for whatever reason. Each restart gets a fresh actor
// value and a new ID but keeps the mailbox, so Addr stays valid and queued
// messages survive. Restarts are immediate; callers needing backoff
// implement it in the factory or in Started.
type Supervisor[A any] struct {
	cell     *cell[A]
	factory  func() A
	ctx      context.Context
	cancel   context.CancelFunc
	restarts atomic.Int64
}

// Supervise starts the first instance from factory. If its Started hook
// fails the error is returned and nothing is supervised.
func Supervise[A any](sys *System, factory func() A, opts ...Option) (*Supervisor[A], error) {
	c := newCell[A](sys, opts)
	if err := sys.track(c); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(sys.ctx)
	s := &Supervisor[A]{cell: c, factory: factory, ctx: ctx, cancel: cancel}

	a := factory()
	ac, err := c.boot(ctx, a)
	if err != nil {
		cancel()
		c.closeMailbox()
		c.terminate(err)
		return nil, err
	}
	go s.loop(ac, a)
	return s, nil
}

// Addr returns the stable address of the supervised actor.
func (s *Supervisor[A]) Addr() Addr[A] { return Addr[A]{c: s.cell} }

// Restarts returns how many times a new instance was started.
func (s *Supervisor[A]) Restarts() int { return int(s.restarts.Load()) }

// Stop ends supervision and stops the current instance. Pending messages
// are failed with ErrMailboxClosed.
func (s *Supervisor[A]) Stop() { s.cancel() }

// Done is closed once supervision ended and the last instance stopped.
func (s *Supervisor[A]) Done() <-chan struct{} { return s.cell.done }

func (s *Supervisor[A]) loop(ac *Context[A], a A) {
	c := s.cell
	defer s.cancel()
	for {
		cause := c.serve(ac, a)
		final := s.ctx.Err() != nil
		outcome := c.halt(ac, a, cause, final)
		if final {
			c.terminate(outcome)
			return
		}

		var ok bool
		if ac, a, ok = s.restart(outcome); !ok {
			return
		}
	}
}

// restart starts fresh instances until one boots or supervision ends.
func (s *Supervisor[A]) restart(cause error) (*Context[A], A, bool) {
	c := s.cell
	for {
		n := s.restarts.Add(1)
		c.sys.metrics.ActorRestarted(c.name)
		c.log.Info("restarting actor", slog.Any("cause", cause), slog.Int64("restarts", n))

		a := s.factory()
		ac, err := c.boot(s.ctx, a)
		if err == nil {
			return ac, a, true
		}
		if s.ctx.Err() != nil {
			c.closeMailbox()
			c.terminate(err)
			var zero A
			return nil, zero, false
		}
		cause = err
	}
}
