package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_small(t *testing.T) {
	cfg := defaultConfig()
	cfg.Messages = 400
	cfg.Actors = 2
	cfg.Subscribers = 4
	cfg.Restarts = 5

	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(t.Context(), cfg, log, &out))

	for _, name := range []string{"call", "send", "publish", "registry", "restart"} {
		require.Contains(t, out.String(), name)
	}
	require.Contains(t, out.String(), "memory:")
}

func TestRun_bounded_mailbox(t *testing.T) {
	cfg := defaultConfig()
	cfg.Messages = 200
	cfg.Actors = 2
	cfg.Subscribers = 2
	cfg.Mailbox = 4
	cfg.Restarts = 2

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(t.Context(), cfg, log, io.Discard))
}

func TestPhaseResult_OpsPerSec(t *testing.T) {
	require.Equal(t, 7, phaseResult{Ops: 7}.OpsPerSec())
}
