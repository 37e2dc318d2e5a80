package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type watch struct {
	ch        <-chan int
	keepGoing bool
}

func (m watch) Handle(c *Context[*counter], _ *counter) (struct{}, error) {
	onItem := func(_ *Context[*counter], a *counter, v int) { a.seen = append(a.seen, v) }
	var onDone func(*Context[*counter], *counter)
	if m.keepGoing {
		onDone = func(_ *Context[*counter], a *counter) { a.seen = append(a.seen, -1) }
	}
	AddStream(c, m.ch, onItem, onDone)
	return struct{}{}, nil
}

func TestAddStream(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	ch := make(chan int)
	require.NoError(t, Send(t.Context(), addr, watch{ch: ch, keepGoing: true}))
	for i := 1; i <= 3; i++ {
		ch <- i
	}
	close(ch)

	require.Eventually(t, func() bool {
		seen, err := Call(t.Context(), addr, getSeen{})
		return err == nil && len(seen) == 4
	}, time.Second, 5*time.Millisecond)

	seen, err := Call(t.Context(), addr, getSeen{})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, -1}, seen)
	require.Equal(t, Running, addr.State())
}

func TestAddStream_stops_actor_when_exhausted(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	ch := make(chan int, 1)
	ch <- 1
	close(ch)
	require.NoError(t, Send(t.Context(), addr, watch{ch: ch}))
	require.NoError(t, addr.Wait(t.Context()))
}

func TestAddStream_ends_with_actor(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	ch := make(chan int)
	require.NoError(t, Send(t.Context(), addr, watch{ch: ch}))
	addr.Stop(nil)
	require.NoError(t, addr.Wait(t.Context()))
}
