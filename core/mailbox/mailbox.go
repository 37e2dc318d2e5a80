// Package mailbox provides the FIFO queue that feeds a single actor's run loop.
//
// A [Mailbox] is either bounded (producers are suspended or rejected once
// capacity is reached) or unbounded (producers never wait). Many goroutines
// may enqueue concurrently; exactly one goroutine is expected to dequeue.
//
//	mb := mailbox.New[string](16)
//	_ = mb.Enqueue(ctx, "hello")
//	v, err := mb.Dequeue(ctx)
//
// Items dequeue in the exact order they were accepted. After [Mailbox.Close],
// new items are rejected with [ErrClosed] while items already queued can
// still be dequeued or collected with [Mailbox.Drain].
package mailbox

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("mailbox closed")
	ErrFull   = errors.New("mailbox full")
)

// compactThreshold is the number of consumed slots after which the backing
// slice is compacted.
const compactThreshold = 64

type Mailbox[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int
	capacity int
	closed   bool

	// ready holds at most one wake-up token for the consumer.
	ready chan struct{}
	// space is closed (and cleared) whenever an item is removed while
	// producers are waiting for room.
	space chan struct{}
	done  chan struct{}
}

// New creates a mailbox. A capacity <= 0 creates an unbounded mailbox.
func New[T any](capacity int) *Mailbox[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Mailbox[T]{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Cap returns the capacity, 0 for unbounded mailboxes.
func (m *Mailbox[T]) Cap() int { return m.capacity }

// Bounded reports whether producers can be held back by capacity.
func (m *Mailbox[T]) Bounded() bool { return m.capacity > 0 }

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lenLocked()
}

// Closed is closed once the mailbox stops accepting items.
func (m *Mailbox[T]) Closed() <-chan struct{} { return m.done }

// IsClosed reports whether Close was called.
func (m *Mailbox[T]) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Enqueue appends v. On a full bounded mailbox it waits until room is
// available, the mailbox is closed or ctx is done.
func (m *Mailbox[T]) Enqueue(ctx context.Context, v T) error {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return ErrClosed
		}
		if !m.fullLocked() {
			m.pushLocked(v)
			m.mu.Unlock()
			return nil
		}
		if m.space == nil {
			m.space = make(chan struct{})
		}
		space := m.space
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return ErrClosed
		case <-space:
		}
	}
}

// TryEnqueue appends v without waiting.
func (m *Mailbox[T]) TryEnqueue(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.fullLocked() {
		return ErrFull
	}
	m.pushLocked(v)
	return nil
}

// Dequeue removes the oldest item, waiting until one is available. It returns
// ErrClosed only once the mailbox is closed and empty.
func (m *Mailbox[T]) Dequeue(ctx context.Context) (T, error) {
	for {
		m.mu.Lock()
		if m.lenLocked() > 0 {
			v := m.popLocked()
			m.mu.Unlock()
			return v, nil
		}
		closed := m.closed
		m.mu.Unlock()

		var zero T
		if closed {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-m.done:
		case <-m.ready:
		}
	}
}

// Close stops accepting items and wakes every waiting producer and the
// consumer. It is safe to call more than once.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
}

// Drain removes and returns all queued items in FIFO order.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, m.lenLocked())
	for m.lenLocked() > 0 {
		out = append(out, m.popLocked())
	}
	return out
}

// ---- internals ----

func (m *Mailbox[T]) lenLocked() int { return len(m.items) - m.head }

func (m *Mailbox[T]) fullLocked() bool {
	return m.capacity > 0 && m.lenLocked() >= m.capacity
}

func (m *Mailbox[T]) pushLocked(v T) {
	m.items = append(m.items, v)
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) popLocked() T {
	var zero T
	v := m.items[m.head]
	m.items[m.head] = zero
	m.head++

	switch {
	case m.head == len(m.items):
		m.items = m.items[:0]
		m.head = 0
	case m.head >= compactThreshold && m.head*2 >= len(m.items):
		n := copy(m.items, m.items[m.head:])
		clear(m.items[n:])
		m.items = m.items[:n]
		m.head = 0
	}

	if m.space != nil {
		close(m.space)
		m.space = nil
	}
	return v
}
