package actor

import (
	"runtime/debug"
	"sync"

	"github.com/codewandler/actr-go/core/reflector"
)

// envelope is a type-erased unit of work for an actor of type A. The
// concrete message type and its reply slot are bound into the closures.
type envelope[A any] struct {
	msgType string
	reply   bool
	deliver func(c *Context[A], a A) error
	discard func(err error)
}

type result[R any] struct {
	value R
	err   error
}

// replySlot accepts exactly one result; later writes are ignored.
type replySlot[R any] struct {
	once sync.Once
	ch   chan result[R]
}

func newReplySlot[R any]() *replySlot[R] {
	return &replySlot[R]{ch: make(chan result[R], 1)}
}

func (s *replySlot[R]) resolve(v R, err error) {
	s.once.Do(func() { s.ch <- result[R]{value: v, err: err} })
}

func (s *replySlot[R]) fail(err error) {
	var zero R
	s.resolve(zero, err)
}

// newEnvelope wraps msg. A nil slot makes it fire-and-forget.
func newEnvelope[A, R any](msg Message[A, R], slot *replySlot[R]) envelope[A] {
	msgType := msgTypeOf(msg)
	return envelope[A]{
		msgType: msgType,
		reply:   slot != nil,
		deliver: func(c *Context[A], a A) error {
			var (
				v   R
				err error
			)
			if pe := guard(func() { v, err = msg.Handle(c, a) }); pe != nil {
				if slot != nil {
					slot.fail(&HandlerError{MsgType: msgType, Cause: pe})
				}
				return pe
			}
			if err != nil {
				err = &HandlerError{MsgType: msgType, Cause: err}
			}
			if slot != nil {
				slot.resolve(v, err)
			}
			return err
		},
		discard: func(err error) {
			if slot != nil {
				slot.fail(err)
			}
		},
	}
}

// guard runs f and converts a panic into a *PanicError.
func guard(f func()) (pe *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			pe = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	f()
	return nil
}

func msgTypeOf(msg any) string {
	return reflector.TypeInfoOf(msg).Short
}
