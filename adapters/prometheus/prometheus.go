// Package prometheus provides a Prometheus implementation of actor.Metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codewandler/actr-go/core/metrics"
)

// newTimer starts a timer that observes into h in seconds.
func newTimer(h prometheus.Observer) metrics.Timer {
	return metrics.NewTimer(func(d time.Duration) {
		h.Observe(d.Seconds())
	})
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// Buckets for queue lengths.
var depthBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
