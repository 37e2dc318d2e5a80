package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/actr-go/core/actor"
)

type greeter struct{}

type greet struct{ name string }

func (m greet) Handle(_ *actor.Context[*greeter], _ *greeter) (string, error) {
	if m.name == "" {
		return "", errors.New("no name")
	}
	return "hello " + m.name, nil
}

// sumCounter returns the sum of all counter and gauge samples of the named
// family whose labels include want.
func sumCounter(reg *prometheus.Registry, name string, want map[string]string) float64 {
	mfs, err := reg.Gather()
	if err != nil {
		return -1
	}

	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			if c := m.GetCounter(); c != nil {
				sum += c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				sum += g.GetValue()
			}
		}
	}
	return sum
}

func TestActorMetrics_with_system(t *testing.T) {
	reg := prometheus.NewRegistry()
	sys := actor.NewSystem(actor.SystemOptions{Context: t.Context(), Metrics: NewActorMetrics(reg)})

	addr, err := actor.Start(sys, &greeter{})
	require.NoError(t, err)

	res, err := actor.Call(t.Context(), addr, greet{name: "bob"})
	require.NoError(t, err)
	require.Equal(t, "hello bob", res)
	_, err = actor.Call(t.Context(), addr, greet{})
	require.Error(t, err)

	// counters are updated after the reply was sent
	require.Eventually(t, func() bool {
		return sumCounter(reg, "actr_messages_total", map[string]string{"message_type": "prometheus.greet", "success": "true"}) == 1 &&
			sumCounter(reg, "actr_messages_total", map[string]string{"message_type": "prometheus.greet", "success": "false"}) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, 1.0, sumCounter(reg, "actr_actors_running", map[string]string{"actor": "prometheus.greeter"}))

	require.NoError(t, sys.Shutdown(t.Context()))
	require.Equal(t, 0.0, sumCounter(reg, "actr_actors_running", map[string]string{"actor": "prometheus.greeter"}))
	require.Equal(t, 1.0, sumCounter(reg, "actr_actors_stopped_total", map[string]string{"actor": "prometheus.greeter", "failed": "false"}))
}
