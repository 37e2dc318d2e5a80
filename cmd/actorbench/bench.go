package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codewandler/actr-go/core/actor"
)

type phaseResult struct {
	Name string
	Ops  int
	Took time.Duration
}

func (r phaseResult) OpsPerSec() int {
	if r.Took <= 0 {
		return r.Ops
	}
	return int(float64(r.Ops) / r.Took.Seconds())
}

type phase struct {
	name string
	run  func(ctx context.Context, sys *actor.System, cfg Config) (int, error)
}

var phases = []phase{
	{"call", benchCall},
	{"send", benchSend},
	{"publish", benchPublish},
	{"registry", benchRegistry},
	{"restart", benchRestart},
}

func runBench(ctx context.Context, sys *actor.System, cfg Config) ([]phaseResult, error) {
	results := make([]phaseResult, 0, len(phases))
	for _, p := range phases {
		start := time.Now()
		ops, err := p.run(ctx, sys, cfg)
		if err != nil {
			return results, fmt.Errorf("phase %s: %w", p.name, err)
		}
		results = append(results, phaseResult{Name: p.name, Ops: ops, Took: time.Since(start)})
	}
	return results, nil
}

func startCounters(sys *actor.System, cfg Config) ([]actor.Addr[*Counter], error) {
	addrs := make([]actor.Addr[*Counter], cfg.Actors)
	for i := range addrs {
		addr, err := actor.Start(sys, NewCounter(), actor.WithBoundedMailbox(cfg.Mailbox))
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	return addrs, nil
}

func stopAll(ctx context.Context, addrs []actor.Addr[*Counter]) error {
	for _, addr := range addrs {
		addr.Stop(nil)
	}
	for _, addr := range addrs {
		if err := addr.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// benchCall runs request/reply round trips, one caller per actor.
func benchCall(ctx context.Context, sys *actor.System, cfg Config) (int, error) {
	addrs, err := startCounters(sys, cfg)
	if err != nil {
		return 0, err
	}
	per := cfg.Messages / len(addrs)

	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range addrs {
		g.Go(func() error {
			for range per {
				if _, err := actor.Call(gctx, addr, Incr{}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return per * len(addrs), stopAll(ctx, addrs)
}

// benchSend enqueues fire-and-forget messages and waits until all were handled.
func benchSend(ctx context.Context, sys *actor.System, cfg Config) (int, error) {
	addrs, err := startCounters(sys, cfg)
	if err != nil {
		return 0, err
	}
	per := cfg.Messages / len(addrs)

	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range addrs {
		g.Go(func() error {
			for range per {
				if err := actor.Send(gctx, addr, Note{}); err != nil {
					return err
				}
			}
			n, err := actor.Call(gctx, addr, Notes{})
			if err != nil {
				return err
			}
			if n != per {
				return fmt.Errorf("actor %s saw %d of %d notes", addr, n, per)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return per * len(addrs), stopAll(ctx, addrs)
}

// benchPublish fans ticks out to all listeners and waits for every accepted copy.
func benchPublish(ctx context.Context, sys *actor.System, cfg Config) (int, error) {
	var received atomic.Int64
	addrs := make([]actor.Addr[*Listener], cfg.Subscribers)
	for i := range addrs {
		addr, err := actor.Start(sys, &Listener{received: &received}, actor.WithBoundedMailbox(cfg.Mailbox))
		if err != nil {
			return 0, err
		}
		if err := actor.Subscribe[Tick](sys, addr); err != nil {
			return 0, err
		}
		addrs[i] = addr
	}

	delivered := 0
	rounds := max(cfg.Messages/max(cfg.Subscribers, 1), 1)
	for i := range rounds {
		delivered += actor.Publish(sys, Tick{Seq: i, Path: []string{"bench"}})
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for received.Load() < int64(delivered) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}

	for _, addr := range addrs {
		addr.Stop(nil)
	}
	return delivered, nil
}

// benchRegistry looks up one singleton from many goroutines.
func benchRegistry(ctx context.Context, sys *actor.System, cfg Config) (int, error) {
	const callers = 64
	per := max(cfg.Messages/callers, 1)

	g, gctx := errgroup.WithContext(ctx)
	for range callers {
		g.Go(func() error {
			for range per {
				addr, err := actor.GetOrStart(sys, NewCounter)
				if err != nil {
					return err
				}
				if err := actor.TrySend(addr, Note{}); err != nil && !errors.Is(err, actor.ErrMailboxFull) {
					return err
				}
			}
			return gctx.Err()
		})
	}
	return callers * per, g.Wait()
}

// benchRestart crashes a supervised actor and waits for each replacement.
func benchRestart(ctx context.Context, sys *actor.System, cfg Config) (int, error) {
	sup, err := actor.Supervise(sys, NewCounter, actor.WithOnPanic(func(any, []byte, string) {}))
	if err != nil {
		return 0, err
	}
	defer sup.Stop()

	addr := sup.Addr()
	for range cfg.Restarts {
		if _, err := actor.Call(ctx, addr, Crash{}); err == nil {
			return 0, errors.New("crash did not fail")
		}
		n, err := actor.Call(ctx, addr, Incr{})
		if err != nil {
			return 0, err
		}
		if n != 1 {
			return 0, fmt.Errorf("restarted counter carried state: %d", n)
		}
	}
	return sup.Restarts(), nil
}

func printResults(w io.Writer, results []phaseResult) {
	fmt.Fprintln(w, "==========================================")
	for _, r := range results {
		fmt.Fprintf(w, "%10s | %8d ops | %8d ms | %10d ops/s |\n", r.Name, r.Ops, r.Took.Milliseconds(), r.OpsPerSec())
	}

	runtime.GC()
	mu := getMemUsage()
	fmt.Fprintln(w, "==========================================")
	fmt.Fprintf(w, "memory: %d / %d MiB (alloc / sys), %d GC cycles\n", mu.Alloc/1024/1024, mu.Sys/1024/1024, mu.NumGC)
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}
