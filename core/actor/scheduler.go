package actor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// scheduler runs the sub-tasks an actor instance spawns. Tasks receive the
// instance's lifetime context; Wait is called once during stop and rejects
// later tasks.
type scheduler struct {
	ctx      context.Context
	log      *slog.Logger
	inflight atomic.Int32
	sem      chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	actorType string
	metrics   Metrics
}

func newScheduler(ctx context.Context, max int, actorType string, log *slog.Logger, m Metrics) *scheduler {
	var sem chan struct{}
	if max > 0 {
		sem = make(chan struct{}, max)
	}
	if m == nil {
		m = NopMetrics()
	}
	return &scheduler{
		ctx:       ctx,
		log:       log,
		sem:       sem,
		actorType: actorType,
		metrics:   m,
	}
}

// Schedule runs f asynchronously. It reports false if the scheduler is
// already shut down, in which case f never runs.
func (s *scheduler) Schedule(f func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.closed || s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		if s.sem != nil {
			select {
			case <-s.ctx.Done():
				return
			case s.sem <- struct{}{}:
			}
			defer func() { <-s.sem }()
		}

		s.inflight.Add(1)
		s.metrics.TasksInflight(s.actorType, 1)
		defer func() {
			s.inflight.Add(-1)
			s.metrics.TasksInflight(s.actorType, -1)
		}()

		s.runTask(f)
	}()
	return true
}

func (s *scheduler) runTask(f func(ctx context.Context)) {
	defer s.metrics.TaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.TaskCompleted(false)
			// log the panic but don't re-panic
			s.log.Error("spawned task panicked", slog.Any("recovered", r))
		}
	}()

	f(s.ctx)
	s.metrics.TaskCompleted(true)
}

// Wait rejects further tasks and blocks until all in-flight tasks complete.
// Callers cancel the scheduler's context first.
func (s *scheduler) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

// Inflight returns the number of tasks currently running.
func (s *scheduler) Inflight() int { return int(s.inflight.Load()) }
