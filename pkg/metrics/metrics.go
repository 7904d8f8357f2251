// Package metrics provides Prometheus instrumentation for snapkv stores.
//
// A store opened without metrics runs them as no-ops: every method is safe
// on a nil *Metrics, so call sites never branch on whether instrumentation
// is configured.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "snapkv"

// Outcome label values for the operations counter.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the store's Prometheus collectors.
type Metrics struct {
	ops               *prometheus.CounterVec
	flushDuration     prometheus.Histogram
	flushBytes        prometheus.Histogram
	retained          *prometheus.GaugeVec
	evicted           prometheus.Counter
	integrityFailures prometheus.Counter
}

// New builds and registers the store's collectors. A nil registerer gets a
// private registry, so the metrics still work but are not exported anywhere.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Store operations by name and outcome.",
		}, []string{"op", "outcome"}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time spent writing a snapshot during flush.",
			Buckets:   prometheus.DefBuckets,
		}),
		flushBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "flush_bytes",
			Help:      "Stored snapshot payload size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}),
		retained: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "snapshots_retained",
			Help:      "Snapshots currently retained on disk.",
		}, []string{"instance"}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "snapshots_evicted_total",
			Help:      "Snapshots removed by the retention policy.",
		}),
		integrityFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "integrity_failures_total",
			Help:      "Digest or payload integrity failures detected.",
		}),
	}

	reg.MustRegister(m.ops, m.flushDuration, m.flushBytes, m.retained, m.evicted, m.integrityFailures)
	return m
}

// ObserveOp counts one operation with its outcome.
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.ops.WithLabelValues(op, outcome).Inc()
}

// ObserveFlush records the duration and stored size of a successful flush.
func (m *Metrics) ObserveFlush(d time.Duration, storedBytes int64) {
	if m == nil {
		return
	}
	m.flushDuration.Observe(d.Seconds())
	m.flushBytes.Observe(float64(storedBytes))
}

// SetRetained records how many snapshots an instance currently retains.
func (m *Metrics) SetRetained(instance string, n int) {
	if m == nil {
		return
	}
	m.retained.WithLabelValues(instance).Set(float64(n))
}

// AddEvicted counts snapshots removed by retention.
func (m *Metrics) AddEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

// IncIntegrityFailure counts one detected integrity failure.
func (m *Metrics) IncIntegrityFailure() {
	if m == nil {
		return
	}
	m.integrityFailures.Inc()
}
