package actor

import (
	"context"
	"log/slog"
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
)

// selfKey carries the process handling the current message so Call can
// detect requests an actor sends to itself.
type selfKey struct{}

// Context is handed to message handlers and lifecycle hooks. It is a
// context.Context that is cancelled when the actor instance stops.
type Context[A any] struct {
	context.Context
	cell   *cell[A]
	inst   *instance
	log    *slog.Logger
	sched  *scheduler
	topics mapset.Set[reflect.Type]
}

func (c *Context[A]) Value(key any) any {
	if _, ok := key.(selfKey); ok {
		return process(c.cell)
	}
	return c.Context.Value(key)
}

// Addr returns the address of the actor itself.
func (c *Context[A]) Addr() Addr[A] { return Addr[A]{c: c.cell} }

// ID returns the identity of the running instance.
func (c *Context[A]) ID() ID { return c.inst.id }

func (c *Context[A]) System() *System   { return c.cell.sys }
func (c *Context[A]) Log() *slog.Logger { return c.log }

// Stop asks the instance to stop once the current message is handled.
// A nil err is a clean stop.
func (c *Context[A]) Stop(err error) { c.inst.requestStop(err) }

// Spawn runs f outside the mailbox. f receives the instance's lifetime
// context and the actor waits for it during stop. Spawn reports false
// if the instance is already shutting down.
func (c *Context[A]) Spawn(f func(ctx context.Context)) bool {
	return c.sched.Schedule(f)
}

func (c *Context[A]) releaseTopics() {
	for _, key := range c.topics.ToSlice() {
		c.cell.sys.broker.unsubscribeKey(key, c.cell)
	}
	c.topics.Clear()
}
