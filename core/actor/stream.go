package actor

import "context"

// streamMsg runs a closure inside the actor.
type streamMsg[A any] struct {
	f func(c *Context[A], a A)
}

func (m streamMsg[A]) Handle(c *Context[A], a A) (struct{}, error) {
	m.f(c, a)
	return struct{}{}, nil
}

// AddStream feeds every item of stream to onItem, one mailbox envelope per
// item, so items are handled in order and interleaved with other messages.
// When stream closes, onDone runs inside the actor; a nil onDone stops the
// actor. Streaming ends early when the instance stops.
func AddStream[A, T any](c *Context[A], stream <-chan T, onItem func(c *Context[A], a A, item T), onDone func(c *Context[A], a A)) bool {
	if onDone == nil {
		onDone = func(c *Context[A], _ A) { c.Stop(nil) }
	}
	self := c.Addr()
	return c.Spawn(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-stream:
				if !ok {
					_ = Send(ctx, self, Message[A, struct{}](streamMsg[A]{f: onDone}))
					return
				}
				msg := streamMsg[A]{f: func(c *Context[A], a A) { onItem(c, a, item) }}
				if err := Send(ctx, self, Message[A, struct{}](msg)); err != nil {
					return
				}
			}
		}
	})
}
