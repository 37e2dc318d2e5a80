package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/codewandler/actr-go/core/mailbox"
	"github.com/codewandler/actr-go/core/reflector"
)

type (
	// Message is a value an actor of type A handles, producing a result R.
	// Messages without a meaningful result use struct{}.
	Message[A any, R any] interface {
		Handle(c *Context[A], actor A) (R, error)
	}

	// Starter is implemented by actors that initialize before handling messages.
	// A failing Started aborts the start.
	Starter[A any] interface {
		Started(c *Context[A]) error
	}

	// Stopper is implemented by actors that react to a stop request while
	// their sub-tasks are still running.
	Stopper[A any] interface {
		Stopping(c *Context[A]) error
	}

	// Finalizer is implemented by actors that clean up after all sub-tasks ended.
	Finalizer[A any] interface {
		Stopped(c *Context[A]) error
	}
)

// process is the type-erased view of an actor used as identity by the
// system, the broker and self-call detection.
type process interface {
	ID() ID
	Name() string
	Stop(err error)
	Done() <-chan struct{}
	Err() error
}

// instance is one started incarnation of an actor.
type instance struct {
	id      ID
	stopCtx context.Context
	stop    context.CancelCauseFunc
	// cancel ends the lifetime context handed to handlers and sub-tasks.
	cancel context.CancelFunc
}

func (i *instance) requestStop(err error) {
	if err == nil {
		err = errStopped
	}
	i.stop(err)
}

// cell is the shared core behind every Addr of one actor. A supervised
// actor keeps its cell, and therefore its mailbox, across restarts.
type cell[A any] struct {
	sys  *System
	name string
	opts options
	log  *slog.Logger
	mb   *mailbox.Mailbox[envelope[A]]

	id    atomic.Uint64
	state atomic.Int32

	mu   sync.Mutex
	inst *instance

	done chan struct{}
	err  error
}

func newCell[A any](sys *System, opts []Option) *cell[A] {
	o := buildOptions(sys.log, opts)
	name := o.name
	if name == "" {
		name = reflector.TypeInfoFor[A]().Short
	}
	return &cell[A]{
		sys:  sys,
		name: name,
		opts: o,
		log:  o.logger.With(slog.String("actor", name)),
		mb:   mailbox.New[envelope[A]](o.mailboxSize),
		done: make(chan struct{}),
	}
}

// Start runs the Started hook of a and, once it succeeded, begins
// processing messages. On failure the returned error is a *StartError and
// no further hooks run.
func Start[A any](sys *System, a A, opts ...Option) (Addr[A], error) {
	c := newCell[A](sys, opts)
	if err := sys.track(c); err != nil {
		return Addr[A]{}, err
	}
	ac, err := c.boot(sys.ctx, a)
	if err != nil {
		c.closeMailbox()
		c.terminate(err)
		return Addr[A]{}, err
	}
	go c.run(ac, a)
	return Addr[A]{c: c}, nil
}

func (c *cell[A]) ID() ID       { return ID(c.id.Load()) }
func (c *cell[A]) Name() string { return c.name }
func (c *cell[A]) State() State { return State(c.state.Load()) }

func (c *cell[A]) String() string { return fmt.Sprintf("%s#%s", c.name, c.ID()) }

// Stop asks the current instance to stop. A nil err is a clean stop.
func (c *cell[A]) Stop(err error) {
	c.mu.Lock()
	inst := c.inst
	c.mu.Unlock()
	if inst != nil {
		inst.requestStop(err)
	}
}

func (c *cell[A]) Done() <-chan struct{} { return c.done }

// Err returns the terminal outcome once Done is closed, nil before.
func (c *cell[A]) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *cell[A]) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// boot creates a fresh instance and runs its Started hook.
func (c *cell[A]) boot(parent context.Context, a A) (*Context[A], error) {
	id := nextID()
	stopCtx, stop := context.WithCancelCause(parent)
	lifeCtx, cancel := context.WithCancel(parent)
	inst := &instance{id: id, stopCtx: stopCtx, stop: stop, cancel: cancel}

	c.mu.Lock()
	c.inst = inst
	c.id.Store(uint64(id))
	c.state.Store(int32(Starting))
	c.mu.Unlock()

	log := c.log.With(slog.String("actor_id", id.String()))
	ac := &Context[A]{
		Context: lifeCtx,
		cell:    c,
		inst:    inst,
		log:     log,
		sched:   newScheduler(lifeCtx, c.opts.maxTasks, c.name, log, c.sys.metrics),
		topics:  mapset.NewSet[reflect.Type](),
	}

	if s, ok := any(a).(Starter[A]); ok {
		if err := c.hook("started", func() error { return s.Started(ac) }); err != nil {
			stop(err)
			cancel()
			ac.sched.Wait()
			ac.releaseTopics()
			c.state.Store(int32(Stopped))
			log.Warn("actor failed to start", slog.Any("error", err))
			return nil, &StartError{Actor: c.name, Cause: err}
		}
	}

	c.state.Store(int32(Running))
	c.sys.metrics.ActorStarted(c.name)
	log.Debug("actor started")
	return ac, nil
}

func (c *cell[A]) run(ac *Context[A], a A) {
	cause := c.serve(ac, a)
	c.terminate(c.halt(ac, a, cause, true))
}

// serve processes envelopes one at a time until the instance is asked to
// stop, and returns the stop cause.
func (c *cell[A]) serve(ac *Context[A], a A) error {
	inst := ac.inst
	for {
		if inst.stopCtx.Err() != nil {
			return context.Cause(inst.stopCtx)
		}
		env, err := c.mb.Dequeue(inst.stopCtx)
		if err != nil {
			if errors.Is(err, mailbox.ErrClosed) {
				return nil
			}
			return context.Cause(inst.stopCtx)
		}
		c.sys.metrics.MailboxDepth(c.name, c.mb.Len())
		c.dispatch(ac, a, env)
	}
}

func (c *cell[A]) dispatch(ac *Context[A], a A, env envelope[A]) {
	m := c.sys.metrics
	timer := m.MessageDuration(env.msgType)
	err := env.deliver(ac, a)
	timer.ObserveDuration()
	m.MessageProcessed(env.msgType, err == nil)

	if pe, ok := err.(*PanicError); ok {
		m.MessagePanic(env.msgType)
		c.opts.onPanic(pe.Value, pe.Stack, env.msgType)
		if !c.opts.continueOnPanic {
			ac.inst.requestStop(pe)
		}
		return
	}
	if err != nil && !env.reply {
		// fire-and-forget: nobody to report to
		ac.log.Debug("message handler failed", slog.String("msg_type", env.msgType), slog.Any("error", err))
	}
}

// halt runs the stop sequence of an instance and returns its outcome.
// Unless final, the mailbox stays open for the next instance.
func (c *cell[A]) halt(ac *Context[A], a A, cause error, final bool) error {
	c.state.Store(int32(Stopping))
	if final {
		c.mb.Close()
	}

	var stoppingErr, stoppedErr error
	if s, ok := any(a).(Stopper[A]); ok {
		stoppingErr = c.hook("stopping", func() error { return s.Stopping(ac) })
	}
	if final {
		c.discardPending()
	}

	ac.inst.cancel()
	ac.sched.Wait()
	ac.releaseTopics()

	if f, ok := any(a).(Finalizer[A]); ok {
		stoppedErr = c.hook("stopped", func() error { return f.Stopped(ac) })
	}

	ac.inst.stop(errStopped)
	c.state.Store(int32(Stopped))

	outcome := errors.Join(stopOutcome(cause), stoppingErr, stoppedErr)
	c.sys.metrics.ActorStopped(c.name, outcome != nil)
	if outcome != nil {
		ac.log.Warn("actor stopped", slog.Any("error", outcome))
	} else {
		ac.log.Debug("actor stopped")
	}
	return outcome
}

// hook runs a lifecycle hook, turning a panic into a *PanicError.
func (c *cell[A]) hook(name string, f func() error) error {
	var err error
	if pe := guard(func() { err = f() }); pe != nil {
		c.opts.onPanic(pe.Value, pe.Stack, name)
		return pe
	}
	return err
}

// closeMailbox rejects further sends and fails everything still queued.
func (c *cell[A]) closeMailbox() {
	c.mb.Close()
	c.discardPending()
}

func (c *cell[A]) discardPending() {
	for _, env := range c.mb.Drain() {
		env.discard(ErrMailboxClosed)
	}
}

// terminate records the final outcome and releases waiters.
func (c *cell[A]) terminate(outcome error) {
	c.err = outcome
	c.state.Store(int32(Stopped))
	c.sys.forget(c)
	close(c.done)
}

// stopOutcome maps a stop cause to the terminal error; clean stops and
// shutdowns map to nil.
func stopOutcome(cause error) error {
	if cause == nil || errors.Is(cause, errStopped) || errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}
