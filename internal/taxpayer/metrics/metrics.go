package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for taxpayer registry lookups.
type Metrics struct {
	// Registry round trips by outcome
	LookupLatency *prometheus.HistogramVec
	LookupOutcome *prometheus.CounterVec

	// Lookup cache effectiveness by backend ("redis", "memory")
	CacheLookups *prometheus.CounterVec

	// Callers whose registry call was shared with another caller
	SharedLookups prometheus.Counter

	BreakerOpen prometheus.Gauge
}

// New registers the taxpayer metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LookupLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiscalid_taxpayer_lookup_duration_seconds",
			Help:    "Duration of DGI registry calls by outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),

		LookupOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalid_taxpayer_lookups_total",
			Help: "Taxpayer lookups by outcome, including cache hits",
		}, []string{"outcome"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalid_taxpayer_cache_lookups_total",
			Help: "Taxpayer cache lookups by backend and result",
		}, []string{"backend", "result"}),

		SharedLookups: f.NewCounter(prometheus.CounterOpts{
			Name: "fiscalid_taxpayer_lookups_shared_total",
			Help: "Lookups whose registry call was shared with another caller",
		}),

		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "fiscalid_taxpayer_breaker_open",
			Help: "1 while the registry circuit breaker is open",
		}),
	}
}

// ObserveLookup records one registry round trip.
func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// IncrementOutcome counts a lookup result however it was produced.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.LookupOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RecordCacheHit(backend string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(backend, "hit").Inc()
	}
}

func (m *Metrics) RecordCacheMiss(backend string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(backend, "miss").Inc()
	}
}

func (m *Metrics) IncrementShared() {
	if m != nil {
		m.SharedLookups.Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
