package actor

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/codewandler/actr-go/core/ds"
	"github.com/codewandler/actr-go/core/reflector"
)

// Cloner is implemented by messages that can be published. Every subscriber
// receives its own copy, so Clone must not share mutable state.
type Cloner[M any] interface {
	Clone() M
}

// broker fans published messages out to subscribers, keyed by message type.
type broker struct {
	log     *slog.Logger
	metrics Metrics

	mu     sync.RWMutex
	topics map[reflect.Type]subscriptions
}

type subscriptions interface {
	remove(p process) bool
	len() int
}

type topic[M any] struct {
	name  string
	order *ds.Set[process]
	subs  map[process]Sender[M]
}

func (t *topic[M]) remove(p process) bool {
	if t.order.Remove(p) == 0 {
		return false
	}
	delete(t.subs, p)
	return true
}

func (t *topic[M]) len() int { return t.order.Len() }

func newBroker(log *slog.Logger, m Metrics) *broker {
	return &broker{log: log, metrics: m, topics: make(map[reflect.Type]subscriptions)}
}

// topicFor returns the topic of M, creating it. b.mu must be held.
func topicFor[M any](b *broker) *topic[M] {
	key := reflect.TypeFor[M]()
	if t, ok := b.topics[key].(*topic[M]); ok {
		return t
	}
	t := &topic[M]{
		name:  reflector.TypeInfoFor[M]().Short,
		order: ds.NewSet[process](),
		subs:  make(map[process]Sender[M]),
	}
	b.topics[key] = t
	return t
}

func (b *broker) unsubscribeKey(key reflect.Type, p process) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[key]; ok {
		return t.remove(p)
	}
	return false
}

// Subscribe adds to to the subscribers of M. Subscribing twice is a no-op.
// M is matched exactly: subscribers of T do not receive *T.
//
//	err := actor.Subscribe[PriceChanged](sys, addr)
func Subscribe[M Message[A, struct{}], A any](sys *System, to Addr[A]) error {
	if to.c == nil || to.c.mb.IsClosed() {
		return ErrMailboxClosed
	}
	b := sys.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	t := topicFor[M](b)
	if t.order.Add(to.c) {
		t.subs[to.c] = SenderOf[M](to)
	}
	return nil
}

// Unsubscribe removes to from the subscribers of M and reports whether it
// was subscribed.
func Unsubscribe[M Message[A, struct{}], A any](sys *System, to Addr[A]) bool {
	if to.c == nil {
		return false
	}
	return sys.broker.unsubscribeKey(reflect.TypeFor[M](), to.c)
}

// SubscribeSelf subscribes the running actor to M. The subscription is
// released when the instance stops.
func SubscribeSelf[M Message[A, struct{}], A any](c *Context[A]) error {
	if err := Subscribe[M](c.System(), c.Addr()); err != nil {
		return err
	}
	c.topics.Add(reflect.TypeFor[M]())
	return nil
}

// UnsubscribeSelf removes the running actor from the subscribers of M.
func UnsubscribeSelf[M Message[A, struct{}], A any](c *Context[A]) bool {
	c.topics.Remove(reflect.TypeFor[M]())
	return Unsubscribe[M](c.System(), c.Addr())
}

// Subscribers returns the number of subscribers of M.
func Subscribers[M any](sys *System) int {
	b := sys.broker
	b.mu.RLock()
	defer b.mu.RUnlock()
	if t, ok := b.topics[reflect.TypeFor[M]()]; ok {
		return t.len()
	}
	return 0
}

// Publish sends a clone of msg to every subscriber of M without waiting and
// returns the number of accepted deliveries. A subscriber whose mailbox is
// closed or full misses the message and is removed from the topic.
func Publish[M Cloner[M]](sys *System, msg M) int {
	b := sys.broker
	b.mu.RLock()
	t, ok := b.topics[reflect.TypeFor[M]()].(*topic[M])
	if !ok {
		b.mu.RUnlock()
		return 0
	}
	targets := make([]Sender[M], 0, t.len())
	t.order.ForEach(func(p process) {
		targets = append(targets, t.subs[p])
	})
	b.mu.RUnlock()

	delivered := 0
	var stale []process
	for _, s := range targets {
		err := s.TrySend(msg.Clone())
		if err == nil {
			delivered++
			continue
		}
		reason := "full"
		if errors.Is(err, ErrMailboxClosed) {
			reason = "closed"
		}
		b.metrics.BrokerDropped(t.name, reason)
		b.log.Debug("subscriber dropped",
			slog.String("topic", t.name),
			slog.String("actor_id", s.ID().String()),
			slog.String("reason", reason),
		)
		stale = append(stale, s.proc)
	}

	if len(stale) > 0 {
		b.mu.Lock()
		for _, p := range stale {
			t.remove(p)
		}
		b.mu.Unlock()
	}

	b.metrics.BrokerDelivered(t.name, delivered)
	return delivered
}
