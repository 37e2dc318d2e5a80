package actor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_call(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)
	require.Equal(t, Running, addr.State())

	n, err := Call(t.Context(), addr, add{by: 1})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = Call(t.Context(), addr, add{by: 2})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestActor_preserves_send_order(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	want := make([]int, 0, 100)
	for i := range 100 {
		require.NoError(t, Send(t.Context(), addr, record{v: i}))
		want = append(want, i)
	}

	seen, err := Call(t.Context(), addr, getSeen{})
	require.NoError(t, err)
	require.Equal(t, want, seen)
}

func TestActor_lifecycle_hooks(t *testing.T) {
	sys := newTestSystem(t)
	a := newCounter()
	addr, err := Start(sys, a)
	require.NoError(t, err)
	expectTrace(t, a, "started")

	addr.Stop(nil)
	require.NoError(t, addr.Wait(t.Context()))
	expectTrace(t, a, "stopping", "stopped")
	require.Equal(t, Stopped, addr.State())
	require.Equal(t, 0, sys.NumActors())
}

func TestActor_start_failure(t *testing.T) {
	sys := newTestSystem(t)
	errNope := errors.New("nope")
	a := newCounter()
	a.failStart = errNope

	addr, err := Start(sys, a)
	require.ErrorIs(t, err, errNope)
	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	require.Equal(t, "actor.counter", startErr.Actor)
	require.True(t, addr.IsZero())

	expectTrace(t, a, "started")
	require.Empty(t, a.trace, "no further hooks after a failed start")
	require.Equal(t, 0, sys.NumActors())
}

func TestActor_handler_error_is_not_fatal(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	errDomain := errors.New("insufficient funds")
	_, err = Call(t.Context(), addr, fail{err: errDomain})
	require.ErrorIs(t, err, errDomain)
	var hErr *HandlerError
	require.ErrorAs(t, err, &hErr)
	require.Equal(t, "actor.fail", hErr.MsgType)

	// fire-and-forget failures are dropped
	require.NoError(t, Send(t.Context(), addr, fail{err: errDomain}))

	n, err := Call(t.Context(), addr, add{by: 1})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestActor_panic_stops_actor(t *testing.T) {
	sys := newTestSystem(t)
	var panics atomic.Int32
	addr, err := Start(sys, newCounter(), WithOnPanic(func(recovered any, stack []byte, msgType string) {
		panics.Add(1)
		assert.Equal(t, "boom", recovered)
		assert.NotEmpty(t, stack)
		assert.Equal(t, "actor.boom", msgType)
	}))
	require.NoError(t, err)

	_, err = Call(t.Context(), addr, boom{})
	var pErr *PanicError
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, "boom", pErr.Value)

	err = addr.Wait(t.Context())
	require.ErrorAs(t, err, &pErr)
	require.EqualValues(t, 1, panics.Load())
	require.ErrorIs(t, Send(t.Context(), addr, add{by: 1}), ErrMailboxClosed)
}

func TestActor_continue_on_panic(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter(), WithContinueOnPanic(), WithOnPanic(func(any, []byte, string) {}))
	require.NoError(t, err)

	_, err = Call(t.Context(), addr, boom{})
	var hErr *HandlerError
	require.ErrorAs(t, err, &hErr)

	n, err := Call(t.Context(), addr, add{by: 5})
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, Running, addr.State())
}

func TestActor_call_timeout(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	_, err = CallTimeout(t.Context(), addr, sleep{d: 50 * time.Millisecond}, 10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the late reply is discarded and the actor keeps going
	n, err := Call(t.Context(), addr, add{by: 1})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestActor_self_call_is_rejected(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	_, err = CallTimeout(t.Context(), addr, callSelf{}, time.Second)
	require.ErrorIs(t, err, ErrSelfCall)
}

func TestActor_call_after_stop(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	addr.Stop(nil)
	require.NoError(t, addr.Wait(t.Context()))

	_, err = Call(t.Context(), addr, add{by: 1})
	require.ErrorIs(t, err, ErrMailboxClosed)
	require.ErrorIs(t, TrySend(addr, record{v: 1}), ErrMailboxClosed)
}

func TestActor_pending_calls_fail_on_stop(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	g := newGate()
	require.NoError(t, Send(t.Context(), addr, g))
	waitEntered(t, g)

	errCh := make(chan error, 1)
	go func() {
		_, err := Call(t.Context(), addr, add{by: 1})
		errCh <- err
	}()
	require.Eventually(t, func() bool { return addr.c.mb.Len() == 1 }, time.Second, time.Millisecond)

	addr.Stop(nil)
	close(g.release)

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrMailboxClosed)
	case <-time.After(time.Second):
		t.Fatal("pending call never resolved")
	}
	require.NoError(t, addr.Wait(t.Context()))
}

func TestActor_bounded_mailbox(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter(), WithBoundedMailbox(1))
	require.NoError(t, err)

	g := newGate()
	require.NoError(t, Send(t.Context(), addr, g))
	waitEntered(t, g)

	require.NoError(t, TrySend(addr, record{v: 1}))
	require.ErrorIs(t, TrySend(addr, record{v: 2}), ErrMailboxFull)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Send(ctx, addr, record{v: 2}), context.DeadlineExceeded)

	close(g.release)
	require.Eventually(t, func() bool {
		return TrySend(addr, record{v: 2}) == nil
	}, time.Second, time.Millisecond)

	seen, err := Call(t.Context(), addr, getSeen{})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, seen)
}

func TestActor_ids_are_unique(t *testing.T) {
	sys := newTestSystem(t)
	a1, err := Start(sys, newCounter())
	require.NoError(t, err)
	a2, err := Start(sys, newCounter())
	require.NoError(t, err)

	require.NotZero(t, a1.ID())
	require.NotEqual(t, a1.ID(), a2.ID())
	require.False(t, a1.Equal(a2))

	id, err := Call(t.Context(), a1, whoAmI{})
	require.NoError(t, err)
	require.Equal(t, a1.ID(), id)
}

func TestActor_stop_with_error(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	errFatal := errors.New("fatal")
	require.NoError(t, Send(t.Context(), addr, stopSelf{err: errFatal}))
	require.ErrorIs(t, addr.Wait(t.Context()), errFatal)
	require.ErrorIs(t, addr.Err(), errFatal)
}

func TestActor_stops_with_system_context(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	sys := NewSystem(SystemOptions{Context: ctx})
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	cancel()
	require.NoError(t, addr.Wait(t.Context()))
	require.NoError(t, sys.Shutdown(t.Context()))
}
