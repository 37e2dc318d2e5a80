package actor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SendAfter delivers msg to to once d elapsed. The returned function
// cancels the delivery if it has not happened yet; ctx bounds it too.
func SendAfter[A, R any](ctx context.Context, to Addr[A], msg Message[A, R], d time.Duration) (cancel func()) {
	ctx, cancel = context.WithCancel(ctx)
	go runTimer(ctx, timerLog(to), d, 0, func(ctx context.Context) error {
		return Send(ctx, to, msg)
	})
	return cancel
}

// SendEvery delivers msg to to every interval until cancelled, until ctx is
// done or until the actor stops.
func SendEvery[A, R any](ctx context.Context, to Addr[A], msg Message[A, R], interval time.Duration) (cancel func()) {
	ctx, cancel = context.WithCancel(ctx)
	go runTimer(ctx, timerLog(to), interval, interval, func(ctx context.Context) error {
		return Send(ctx, to, msg)
	})
	return cancel
}

// SendLater delivers msg to the actor itself after d. The timer belongs to
// the running instance and ends with it.
func SendLater[A, R any](c *Context[A], msg Message[A, R], d time.Duration) (cancel func()) {
	return ownTimer(c, d, 0, msg)
}

// SendInterval delivers msg to the actor itself every interval while the
// running instance lives.
func SendInterval[A, R any](c *Context[A], msg Message[A, R], interval time.Duration) (cancel func()) {
	return ownTimer(c, interval, interval, msg)
}

func ownTimer[A, R any](c *Context[A], first, every time.Duration, msg Message[A, R]) func() {
	ctx, cancel := context.WithCancel(c.Context)
	self := c.Addr()
	log := c.log.With(slog.String("timer", gonanoid.Must(8)))
	if !c.Spawn(func(context.Context) {
		runTimer(ctx, log, first, every, func(ctx context.Context) error {
			return Send(ctx, self, msg)
		})
	}) {
		cancel()
	}
	return cancel
}

func timerLog[A any](to Addr[A]) *slog.Logger {
	log := slog.Default()
	if to.c != nil {
		log = to.c.log
	}
	return log.With(slog.String("timer", gonanoid.Must(8)))
}

// runTimer calls fire after first and then every interval if every > 0.
// It returns once ctx is done or the target stopped accepting messages.
func runTimer(ctx context.Context, log *slog.Logger, first, every time.Duration, fire func(ctx context.Context) error) {
	t := time.NewTimer(first)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}
	if !fireTimer(ctx, log, fire) || every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !fireTimer(ctx, log, fire) {
				return
			}
		}
	}
}

func fireTimer(ctx context.Context, log *slog.Logger, fire func(ctx context.Context) error) bool {
	err := fire(ctx)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrMailboxClosed), ctx.Err() != nil:
		return false
	default:
		log.Warn("timer delivery failed", slog.Any("error", err))
		return true
	}
}
