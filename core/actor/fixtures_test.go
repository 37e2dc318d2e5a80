package actor

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	sys := NewSystem(SystemOptions{Name: t.Name(), Context: t.Context()})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, sys.Shutdown(ctx))
	})
	return sys
}

// counter is the actor most tests run against.
type counter struct {
	n         int
	seen      []int
	trace     chan string
	failStart error
}

func newCounter() *counter { return &counter{trace: make(chan string, 16)} }

func (a *counter) Started(*Context[*counter]) error {
	a.emit("started")
	return a.failStart
}

func (a *counter) Stopping(*Context[*counter]) error {
	a.emit("stopping")
	return nil
}

func (a *counter) Stopped(*Context[*counter]) error {
	a.emit("stopped")
	return nil
}

func (a *counter) emit(ev string) {
	if a.trace != nil {
		a.trace <- ev
	}
}

type (
	add      struct{ by int }
	record   struct{ v int }
	getSeen  struct{}
	fail     struct{ err error }
	boom     struct{}
	whoAmI   struct{}
	callSelf struct{}
	stopSelf struct{ err error }
	sleep    struct{ d time.Duration }
	gate     struct{ entered, release chan struct{} }
)

func (m add) Handle(_ *Context[*counter], a *counter) (int, error) {
	a.n += m.by
	return a.n, nil
}

func (m record) Handle(_ *Context[*counter], a *counter) (struct{}, error) {
	a.seen = append(a.seen, m.v)
	return struct{}{}, nil
}

func (getSeen) Handle(_ *Context[*counter], a *counter) ([]int, error) {
	return slices.Clone(a.seen), nil
}

func (m fail) Handle(*Context[*counter], *counter) (struct{}, error) {
	return struct{}{}, m.err
}

func (boom) Handle(*Context[*counter], *counter) (struct{}, error) {
	panic("boom")
}

func (whoAmI) Handle(c *Context[*counter], _ *counter) (ID, error) {
	return c.ID(), nil
}

func (callSelf) Handle(c *Context[*counter], _ *counter) (int, error) {
	return Call(c, c.Addr(), add{by: 1})
}

func (m stopSelf) Handle(c *Context[*counter], _ *counter) (struct{}, error) {
	c.Stop(m.err)
	return struct{}{}, nil
}

func (m sleep) Handle(*Context[*counter], *counter) (string, error) {
	time.Sleep(m.d)
	return "late", nil
}

func newGate() gate {
	return gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (m gate) Handle(*Context[*counter], *counter) (struct{}, error) {
	close(m.entered)
	<-m.release
	return struct{}{}, nil
}

// expectTrace reads the next lifecycle events of a.
func expectTrace(t *testing.T, a *counter, events ...string) {
	t.Helper()
	for _, want := range events {
		select {
		case got := <-a.trace:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %q", want)
		}
	}
}

func waitEntered(t *testing.T, g gate) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for gate")
	}
}
