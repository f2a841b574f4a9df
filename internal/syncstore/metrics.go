package syncstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts replication activity. A nil *Metrics records nothing.
type Metrics struct {
	writes        *prometheus.CounterVec
	writeDuration prometheus.Histogram
	remoteChanges *prometheus.CounterVec
	reconciles    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moveready",
			Subsystem: "sync",
			Name:      "writes_total",
			Help:      "Remote document writes by result.",
		}, []string{"result"}),
		writeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "moveready",
			Subsystem: "sync",
			Name:      "write_duration_seconds",
			Help:      "Latency of remote document writes.",
			Buckets:   prometheus.DefBuckets,
		}),
		remoteChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moveready",
			Subsystem: "sync",
			Name:      "remote_changes_total",
			Help:      "Remote change notifications by outcome.",
		}, []string{"outcome"}),
		reconciles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moveready",
			Subsystem: "sync",
			Name:      "reconciles_total",
			Help:      "Fields re-read after a concurrent write from another device.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.writes, m.writeDuration, m.remoteChanges, m.reconciles)
	}
	return m
}

func (m *Metrics) observeWrite(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(result).Inc()
	m.writeDuration.Observe(d.Seconds())
}

func (m *Metrics) remoteChange(outcome string) {
	if m == nil {
		return
	}
	m.remoteChanges.WithLabelValues(outcome).Inc()
}

func (m *Metrics) reconcile(n int) {
	if m == nil {
		return
	}
	m.reconciles.Add(float64(n))
}
