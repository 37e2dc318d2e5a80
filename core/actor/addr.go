package actor

import (
	"context"
	"errors"
	"fmt"
	"time"
	"weak"
)

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Addr is a strong handle to an actor. Addr values are cheap to copy and
// safe for concurrent use; every copy targets the same mailbox. The zero
// Addr behaves like a stopped actor.
type Addr[A any] struct {
	c *cell[A]
}

func (a Addr[A]) IsZero() bool { return a.c == nil }

// ID returns the identity of the instance currently behind a. For a
// supervised actor it changes on every restart.
func (a Addr[A]) ID() ID {
	if a.c == nil {
		return 0
	}
	return a.c.ID()
}

func (a Addr[A]) Name() string {
	if a.c == nil {
		return ""
	}
	return a.c.name
}

func (a Addr[A]) State() State {
	if a.c == nil {
		return Stopped
	}
	return a.c.State()
}

// Stop asks the actor to stop. A nil err is a clean stop. Supervised
// actors are restarted; use Supervisor.Stop to end them.
func (a Addr[A]) Stop(err error) {
	if a.c != nil {
		a.c.Stop(err)
	}
}

// Done is closed once the actor reached its terminal Stopped state.
func (a Addr[A]) Done() <-chan struct{} {
	if a.c == nil {
		return closedCh
	}
	return a.c.done
}

// Err returns the terminal outcome: nil for a clean stop or while running.
func (a Addr[A]) Err() error {
	if a.c == nil {
		return nil
	}
	return a.c.Err()
}

// Wait blocks until the actor stopped or ctx is done.
func (a Addr[A]) Wait(ctx context.Context) error {
	select {
	case <-a.Done():
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Equal reports whether both addresses target the same actor.
func (a Addr[A]) Equal(other Addr[A]) bool { return a.c == other.c }

// Downgrade returns a weak address that does not keep the actor reachable.
func (a Addr[A]) Downgrade() WeakAddr[A] {
	if a.c == nil {
		return WeakAddr[A]{}
	}
	return WeakAddr[A]{ptr: weak.Make(a.c), id: a.c.ID()}
}

func (a Addr[A]) String() string {
	if a.c == nil {
		return "<nil>"
	}
	return a.c.String()
}

// WeakAddr is a non-owning handle. Upgrade it to send messages.
type WeakAddr[A any] struct {
	ptr weak.Pointer[cell[A]]
	id  ID
}

// ID returns the instance identity at the time of the downgrade.
func (w WeakAddr[A]) ID() ID { return w.id }

// Upgrade returns a strong address, failing once the actor stopped or
// was reclaimed.
func (w WeakAddr[A]) Upgrade() (Addr[A], bool) {
	c := w.ptr.Value()
	if c == nil || c.stopped() {
		return Addr[A]{}, false
	}
	return Addr[A]{c: c}, true
}

// Send enqueues msg without waiting for it to be handled. On a full
// bounded mailbox it waits for room or ctx.
func Send[A, R any](ctx context.Context, to Addr[A], msg Message[A, R]) error {
	if to.c == nil {
		return ErrMailboxClosed
	}
	return to.c.mb.Enqueue(ctx, newEnvelope(msg, nil))
}

// TrySend enqueues msg without waiting. It fails with ErrMailboxFull when a
// bounded mailbox has no room.
func TrySend[A, R any](to Addr[A], msg Message[A, R]) error {
	if to.c == nil {
		return ErrMailboxClosed
	}
	return to.c.mb.TryEnqueue(newEnvelope(msg, nil))
}

// Call sends msg and waits for the handler's result. A ctx deadline yields
// ErrTimeout; a reply arriving afterwards is discarded. Handler failures are
// returned as *HandlerError.
func Call[A, R any](ctx context.Context, to Addr[A], msg Message[A, R]) (R, error) {
	var zero R
	if to.c == nil {
		return zero, ErrMailboxClosed
	}
	if self, ok := ctx.Value(selfKey{}).(process); ok && self == process(to.c) {
		return zero, ErrSelfCall
	}

	slot := newReplySlot[R]()
	if err := to.c.mb.Enqueue(ctx, newEnvelope(msg, slot)); err != nil {
		return zero, callError(err)
	}

	select {
	case res := <-slot.ch:
		return res.value, res.err
	case <-ctx.Done():
		return zero, callError(ctx.Err())
	}
}

// CallTimeout is Call bounded by d.
func CallTimeout[A, R any](ctx context.Context, to Addr[A], msg Message[A, R], d time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return Call(ctx, to, msg)
}

func callError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// Sender is an address narrowed to one fire-and-forget message type. It
// hides the actor type, so senders of different actors can share a slice.
type Sender[M any] struct {
	proc process
	send func(ctx context.Context, msg M) error
	try  func(msg M) error
}

// SenderOf narrows to to messages of type M.
//
//	s := actor.SenderOf[Tick](addr)
func SenderOf[M Message[A, struct{}], A any](to Addr[A]) Sender[M] {
	if to.c == nil {
		return Sender[M]{}
	}
	return Sender[M]{
		proc: to.c,
		send: func(ctx context.Context, msg M) error { return Send[A, struct{}](ctx, to, msg) },
		try:  func(msg M) error { return TrySend[A, struct{}](to, msg) },
	}
}

func (s Sender[M]) ID() ID {
	if s.proc == nil {
		return 0
	}
	return s.proc.ID()
}

func (s Sender[M]) Send(ctx context.Context, msg M) error {
	if s.send == nil {
		return ErrMailboxClosed
	}
	return s.send(ctx, msg)
}

func (s Sender[M]) TrySend(msg M) error {
	if s.try == nil {
		return ErrMailboxClosed
	}
	return s.try(msg)
}

// Caller is an address narrowed to one request type M with result R.
type Caller[M any, R any] struct {
	proc process
	call func(ctx context.Context, msg M) (R, error)
}

// CallerOf narrows to to requests of type M.
//
//	c := actor.CallerOf[GetBalance, int](addr)
//	balance, err := c.Call(ctx, GetBalance{})
func CallerOf[M Message[A, R], R any, A any](to Addr[A]) Caller[M, R] {
	if to.c == nil {
		return Caller[M, R]{}
	}
	return Caller[M, R]{
		proc: to.c,
		call: func(ctx context.Context, msg M) (R, error) { return Call[A, R](ctx, to, msg) },
	}
}

func (c Caller[M, R]) ID() ID {
	if c.proc == nil {
		return 0
	}
	return c.proc.ID()
}

func (c Caller[M, R]) Call(ctx context.Context, msg M) (R, error) {
	if c.call == nil {
		var zero R
		return zero, ErrMailboxClosed
	}
	return c.call(ctx, msg)
}
