// Command actorbench measures the actor runtime: request/reply, fire-and-forget,
// broker fan-out, registry lookups and supervised restarts.
//
// Configure with environment variables (N, ACTORS, SUBSCRIBERS, MAILBOX,
// RESTARTS, METRICS_ADDR, LOG_LEVEL) or a YAML file named by CONFIG_FILE:
//
//	N=1_000_000 ACTORS=16 METRICS_ADDR=:2121 go run ./cmd/actorbench
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	promadapter "github.com/codewandler/actr-go/adapters/prometheus"
	"github.com/codewandler/actr-go/core/actor"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error("bench failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger, out io.Writer) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promadapter.Handler(reg))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Info("prometheus metrics server starting", slog.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("prometheus server error", slog.Any("error", err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	sys := actor.NewSystem(actor.SystemOptions{
		Name:    "actorbench",
		Context: ctx,
		Logger:  log,
		Metrics: promadapter.NewActorMetrics(reg),
	})

	log.Info("starting",
		slog.Int("messages", cfg.Messages),
		slog.Int("actors", cfg.Actors),
		slog.Int("subscribers", cfg.Subscribers),
		slog.Int("mailbox", cfg.Mailbox),
	)
	results, benchErr := runBench(ctx, sys, cfg)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sys.Shutdown(shutdownCtx); err != nil {
		return errors.Join(benchErr, fmt.Errorf("shutdown: %w", err))
	}
	if benchErr != nil {
		return benchErr
	}

	printResults(out, results)
	return nil
}
