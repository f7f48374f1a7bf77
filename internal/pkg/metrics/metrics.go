// Package metrics holds the Prometheus collectors exported by the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sync"

// Outcomes recorded on sync_flush_total.
const (
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
	OutcomeEmpty     = "empty"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Flushes       *prometheus.CounterVec
	Operations    *prometheus.CounterVec
	FlushDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg when reg is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_total",
			Help:      "Flush attempts by outcome.",
		}, []string{"outcome"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations executed against the store, by kind.",
		}, []string{"kind"}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time spent inside the store transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Flushes, m.Operations, m.FlushDuration)
	}
	return m
}

// ObserveFlush records one flush attempt.
func (m *Metrics) ObserveFlush(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Flushes.WithLabelValues(outcome).Inc()
	if outcome != OutcomeEmpty {
		m.FlushDuration.Observe(d.Seconds())
	}
}

// ObserveOperation records one executed operation.
func (m *Metrics) ObserveOperation(kind string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(kind).Inc()
}
