package actor

import (
	"errors"
	"fmt"

	"github.com/codewandler/actr-go/core/mailbox"
)

var (
	// ErrMailboxClosed is returned when the target actor no longer accepts
	// messages, and resolves calls whose envelope was discarded unhandled.
	ErrMailboxClosed = mailbox.ErrClosed
	// ErrMailboxFull is returned by non-blocking sends to a full bounded mailbox.
	ErrMailboxFull = mailbox.ErrFull
	// ErrTimeout is returned when a call did not receive its reply in time.
	ErrTimeout = errors.New("call timed out")
	// ErrSelfCall is returned when a handler calls its own actor and would
	// wait for a reply it can never produce.
	ErrSelfCall = errors.New("call to own address would deadlock")
	// ErrServiceNotFound is returned by LookupService for unknown or stopped services.
	ErrServiceNotFound = errors.New("service not found")
	// ErrSystemShutdown is returned when starting actors on a system that shut down.
	ErrSystemShutdown = errors.New("actor system shut down")

	// errStopped is the cause of a stop requested without an error.
	errStopped = errors.New("actor stopped")
)

// HandlerError wraps the error a message handler returned.
type HandlerError struct {
	MsgType string
	Cause   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handle %s: %v", e.MsgType, e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

// StartError is returned when an actor's Started hook failed.
type StartError struct {
	Actor string
	Cause error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Actor, e.Cause)
}

func (e *StartError) Unwrap() error { return e.Cause }

// PanicError carries a value recovered from a panicking handler or hook.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes the recovered value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
