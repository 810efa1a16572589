package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing, so tests can pass nil instead of registering
// collectors.
type Metrics struct {
	UpsertsTotal    *prometheus.CounterVec
	LookupsTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UpsertsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "student_registry_upserts_total",
			Help: "Total number of student upserts by outcome.",
		}, []string{"outcome"}),
		LookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "student_registry_lookups_total",
			Help: "Total number of student lookups by result.",
		}, []string{"result"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "student_registry_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// RecordUpsert counts an upsert with outcome "created" or "updated".
func (m *Metrics) RecordUpsert(outcome string) {
	if m == nil {
		return
	}
	m.UpsertsTotal.WithLabelValues(outcome).Inc()
}

// RecordLookup counts a lookup with result "hit" or "miss".
func (m *Metrics) RecordLookup(result string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
