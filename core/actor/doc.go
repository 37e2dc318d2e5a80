// Package actor provides an in-process actor runtime: independent units of
// state that communicate only through messages and handle their mailbox one
// message at a time.
//
// # Actors and Messages
//
// An actor is any Go value. Messages carry their own handler: a message
// type M implements [Message] for the actor type A it targets and the
// result type R it produces.
//
//	type Counter struct{ n int }
//
//	type Add struct{ By int }
//
//	func (m Add) Handle(c *actor.Context[*Counter], a *Counter) (int, error) {
//	    a.n += m.By
//	    return a.n, nil
//	}
//
// Handlers run on the actor's own goroutine and may mutate the actor freely.
// Messages without a result use struct{}.
//
// # Starting Actors
//
// Actors belong to a [System], which owns the service registry, the broker,
// the logger and the metrics:
//
//	sys := actor.NewSystem(actor.SystemOptions{})
//	defer sys.Shutdown(context.Background())
//
//	addr, err := actor.Start(sys, &Counter{}, actor.WithBoundedMailbox(64))
//
// Actors may implement [Starter], [Stopper] and [Finalizer] to hook into
// their lifecycle. A failing Started aborts [Start] with a [*StartError].
//
// # Sending Messages
//
//	err := actor.Send(ctx, addr, Add{By: 1})               // fire-and-forget
//	err = actor.TrySend(addr, Add{By: 1})                  // never waits
//	n, err := actor.Call(ctx, addr, Add{By: 1})            // wait for the result
//	n, err = actor.CallTimeout(ctx, addr, Add{By: 1}, time.Second)
//
// Messages from one sender are handled in the order they were sent. Handler
// failures are returned to callers as [*HandlerError] and never stop the
// actor. A panicking handler stops it unless [WithContinueOnPanic] is set.
//
// # Background Work
//
// Handlers can run work outside the mailbox via [Context.Spawn], feed
// channels into the mailbox via [AddStream] and schedule messages to
// themselves via [SendLater] and [SendInterval]. All of these end with the
// actor instance, which waits for them while stopping.
//
// # Supervision, Services and Pub/Sub
//
// [Supervise] restarts an actor from a factory whenever it stops.
// [GetOrStart] returns a per-type singleton, starting it at most once.
// [Subscribe] and [Publish] fan cloned messages out to all subscribers of a
// message type.
package actor
