// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting_summary"

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Summarization runs by final outcome.",
		},
		[]string{"outcome"},
	)

	RunStateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_state_total",
			Help:      "Summarization run state transitions by entered state.",
		},
		[]string{"state"},
	)

	BackendSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_seconds",
			Help:      "Latency of calls to embedder, generator and stores.",
			Buckets:   []float64{.005, .025, .1, .5, 1, 2.5, 5, 15, 30, 60, 180},
		},
		[]string{"backend", "op"},
	)

	IngestedChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Chunks embedded and written to the vector store.",
		},
	)
)

// ObserveBackend records the time since start for backend/op.
func ObserveBackend(backend, op string, start time.Time) {
	BackendSeconds.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
