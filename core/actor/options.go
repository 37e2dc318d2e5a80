package actor

import "log/slog"

const defaultMaxConcurrentTasks = 32

// OnPanic is called with the recovered value when a handler or hook panics.
type OnPanic func(recovered any, stack []byte, msgType string)

type options struct {
	name            string
	mailboxSize     int
	logger          *slog.Logger
	maxTasks        int
	onPanic         OnPanic
	continueOnPanic bool
}

// Option configures an actor started with Start, Supervise or the registry.
type Option func(*options)

// WithName sets the name used in logs and metric labels. It defaults to
// the short type name of the actor value.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithBoundedMailbox caps the mailbox at capacity envelopes. Blocking sends
// wait for space, TrySend fails with ErrMailboxFull.
func WithBoundedMailbox(capacity int) Option {
	return func(o *options) { o.mailboxSize = capacity }
}

// WithUnboundedMailbox restores the default unbounded mailbox.
func WithUnboundedMailbox() Option {
	return func(o *options) { o.mailboxSize = 0 }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithMaxConcurrentTasks caps the number of tasks run via Context.Spawn.
// If 0 or negative, spawning is unlimited.
func WithMaxConcurrentTasks(n int) Option {
	return func(o *options) { o.maxTasks = n }
}

// WithOnPanic replaces the default panic logger.
func WithOnPanic(f OnPanic) Option {
	return func(o *options) { o.onPanic = f }
}

// WithContinueOnPanic keeps the actor running after a handler panicked.
// The panicking message is answered with a HandlerError either way.
func WithContinueOnPanic() Option {
	return func(o *options) { o.continueOnPanic = true }
}

func buildOptions(log *slog.Logger, opts []Option) options {
	o := options{
		logger:   log,
		maxTasks: defaultMaxConcurrentTasks,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.onPanic == nil {
		l := o.logger
		o.onPanic = func(recovered any, stack []byte, msgType string) {
			l.Error("actor panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)), slog.String("msg_type", msgType))
		}
	}
	return o
}
