package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// SystemOptions configures a System. All fields are optional.
type SystemOptions struct {
	// Name identifies the system in logs. Defaults to a random id.
	Name string
	// Context is the root of all actor lifetimes; cancelling it stops
	// every actor like Shutdown does.
	Context context.Context
	Logger  *slog.Logger
	Metrics Metrics
}

// System is the runtime that actors, the service registry and the broker
// belong to. Actors of different systems are independent.
type System struct {
	name    string
	ctx     context.Context
	cancel  context.CancelFunc
	log     *slog.Logger
	metrics Metrics

	registry *registry
	broker   *broker

	mu     sync.Mutex
	live   map[process]struct{}
	closed bool
}

func NewSystem(opts SystemOptions) *System {
	if opts.Name == "" {
		opts.Name = gonanoid.Must(10)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	ctx, cancel := context.WithCancel(opts.Context)
	log := opts.Logger.With(slog.String("system", opts.Name))
	return &System{
		name:     opts.Name,
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
		metrics:  opts.Metrics,
		registry: newRegistry(),
		broker:   newBroker(log, opts.Metrics),
		live:     make(map[process]struct{}),
	}
}

func (s *System) Name() string             { return s.name }
func (s *System) Context() context.Context { return s.ctx }
func (s *System) Log() *slog.Logger        { return s.log }
func (s *System) Metrics() Metrics         { return s.metrics }

// NumActors returns the number of actors that have not stopped yet.
func (s *System) NumActors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// NumServices returns the number of running registry singletons.
func (s *System) NumServices() int { return s.registry.len() }

func (s *System) track(p process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ctx.Err() != nil {
		return ErrSystemShutdown
	}
	s.live[p] = struct{}{}
	return nil
}

func (s *System) forget(p process) {
	s.mu.Lock()
	delete(s.live, p)
	s.mu.Unlock()
}

// Shutdown stops every actor, supervised ones included, and waits until all
// of them reached Stopped or ctx is done. Starting actors afterwards fails
// with ErrSystemShutdown.
func (s *System) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	procs := make([]process, 0, len(s.live))
	for p := range s.live {
		procs = append(procs, p)
	}
	s.mu.Unlock()

	s.log.Debug("shutting down", slog.Int("actors", len(procs)))
	s.cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range procs {
		g.Go(func() error {
			select {
			case <-p.Done():
				return nil
			case <-gctx.Done():
				return fmt.Errorf("actor %s did not stop: %w", p.Name(), gctx.Err())
			}
		})
	}
	return g.Wait()
}
