package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers profile reads and writes.
type Metrics struct {
	WriteDuration *prometheus.HistogramVec
	Writes        *prometheus.CounterVec
	Rejections    *prometheus.CounterVec

	// Reads by completeness, the checkout gate's answer
	Reads *prometheus.CounterVec

	// Best-effort deletes that failed and left stale metafields behind
	CleanupFailures prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WriteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiscalid_profile_write_duration_seconds",
			Help:    "Profile create/update latency, registry lookup included",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		Writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalid_profile_writes_total",
			Help: "Profile writes by operation and result",
		}, []string{"operation", "result"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalid_profile_rejections_total",
			Help: "Submissions refused by immutability or residency rules",
		}, []string{"reason"}),
		Reads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalid_profile_reads_total",
			Help: "Profile reads by completeness",
		}, []string{"complete"}),
		CleanupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fiscalid_profile_cleanup_failures_total",
			Help: "Metafield deletes that failed after a successful write",
		}),
	}
}

// ObserveWrite records one finished write; result is "ok" or an error code.
func (m *Metrics) ObserveWrite(operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.WriteDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.Writes.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) IncrementRejection(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveRead(complete bool) {
	if m == nil {
		return
	}
	if complete {
		m.Reads.WithLabelValues("true").Inc()
		return
	}
	m.Reads.WithLabelValues("false").Inc()
}

func (m *Metrics) IncrementCleanupFailure() {
	if m != nil {
		m.CleanupFailures.Inc()
	}
}
