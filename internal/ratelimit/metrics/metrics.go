package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions      *prometheus.CounterVec
	StoreFailures  prometheus.Counter
	FallbackChecks prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalid_ratelimit_decisions_total",
			Help: "Rate limit admission decisions by endpoint class",
		}, []string{"class", "decision"}),
		StoreFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fiscalid_ratelimit_store_failures_total",
			Help: "Primary rate limit store errors",
		}),
		FallbackChecks: f.NewCounter(prometheus.CounterOpts{
			Name: "fiscalid_ratelimit_fallback_checks_total",
			Help: "Checks answered by the in-memory fallback store",
		}),
	}
}

func (m *Metrics) ObserveDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.Decisions.WithLabelValues(class, decision).Inc()
}

func (m *Metrics) IncrementStoreFailure() {
	if m == nil {
		return
	}
	m.StoreFailures.Inc()
}

func (m *Metrics) IncrementFallback() {
	if m == nil {
		return
	}
	m.FallbackChecks.Inc()
}
