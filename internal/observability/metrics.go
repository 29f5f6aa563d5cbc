package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mollier"

// Metrics holds the Prometheus collectors for diagram refreshes.
type Metrics struct {
	RefreshesTotal  *prometheus.CounterVec // labels: outcome={success,superseded,error}
	RefreshDuration prometheus.Histogram

	// History fetch metrics.
	HistoryFetchErrors     *prometheus.CounterVec   // labels: sensor, quantity={temperature,humidity}
	HistoryRequestDuration *prometheus.HistogramVec // labels: source

	// Compute metrics.
	SamplesRejected *prometheus.CounterVec // labels: reason
	TracePoints     *prometheus.GaugeVec   // labels: sensor
	ZoneErrors      prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshesTotal,
		m.RefreshDuration,
		m.HistoryFetchErrors,
		m.HistoryRequestDuration,
		m.SamplesRejected,
		m.TracePoints,
		m.ZoneErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so several
// tests can each build their own.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Diagram refreshes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch and assemble cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		HistoryFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_fetch_errors_total",
			Help:      "Failed history fetches by sensor and quantity.",
		}, []string{"sensor", "quantity"}),
		HistoryRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_request_duration_seconds",
			Help:      "History source request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		SamplesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_rejected_total",
			Help:      "Samples excluded from traces by domain error reason.",
		}, []string{"reason"}),
		TracePoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trace_points",
			Help:      "Points in the latest trace of each sensor.",
		}, []string{"sensor"}),
		ZoneErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zone_errors_total",
			Help:      "Comfort zones skipped because a corner was out of domain.",
		}),
	}
}
