package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type (
	recordEvery struct{ every time.Duration }
	recordLater struct{ after time.Duration }
)

func (m recordEvery) Handle(c *Context[*counter], _ *counter) (struct{}, error) {
	SendInterval(c, record{v: 1}, m.every)
	return struct{}{}, nil
}

func (m recordLater) Handle(c *Context[*counter], _ *counter) (struct{}, error) {
	SendLater(c, record{v: 9}, m.after)
	return struct{}{}, nil
}

// seenLen is safe to use in Eventually conditions.
func seenLen(t *testing.T, addr Addr[*counter]) int {
	seen, err := Call(t.Context(), addr, getSeen{})
	if err != nil {
		return -1
	}
	return len(seen)
}

func TestSendAfter(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	SendAfter(t.Context(), addr, record{v: 7}, 20*time.Millisecond)
	require.Equal(t, 0, seenLen(t, addr))
	require.Eventually(t, func() bool { return seenLen(t, addr) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSendAfter_cancel(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	cancel := SendAfter(t.Context(), addr, record{v: 7}, 20*time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, seenLen(t, addr))
}

func TestSendEvery(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	cancel := SendEvery(t.Context(), addr, record{v: 1}, 5*time.Millisecond)
	require.Eventually(t, func() bool { return seenLen(t, addr) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestSendEvery_ends_when_actor_stops(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	SendEvery(t.Context(), addr, record{v: 1}, time.Millisecond)
	addr.Stop(nil)
	require.NoError(t, addr.Wait(t.Context()))
}

func TestSendLater(t *testing.T) {
	sys := newTestSystem(t)
	addr, err := Start(sys, newCounter())
	require.NoError(t, err)

	require.NoError(t, Send(t.Context(), addr, recordLater{after: 10 * time.Millisecond}))
	require.Eventually(t, func() bool { return seenLen(t, addr) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSendInterval_bound_to_instance(t *testing.T) {
	sys := newTestSystem(t)
	a := newCounter()
	addr, err := Start(sys, a)
	require.NoError(t, err)

	require.NoError(t, Send(t.Context(), addr, recordEvery{every: 5 * time.Millisecond}))
	require.Eventually(t, func() bool { return seenLen(t, addr) >= 2 }, time.Second, 5*time.Millisecond)

	// stopping waits for the timer task, so this returns only once it ended
	addr.Stop(nil)
	require.NoError(t, addr.Wait(t.Context()))
	expectTrace(t, a, "started", "stopping", "stopped")
}
