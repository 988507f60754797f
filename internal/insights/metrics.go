// Package insights provides metrics for report computation.
package insights

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricReportsTotal   = "insight_reports_total"
	MetricReportFailures = "insight_report_failures_total"
	MetricReportDuration = "insight_report_duration_seconds"
)

// Metrics contains Prometheus metrics for report computation.
// All operations are thread-safe.
type Metrics struct {
	reportsTotal   *prometheus.CounterVec
	reportFailures *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		reportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricReportsTotal,
				Help: "Total number of insight reports computed by scope",
			},
			[]string{"scope"},
		),
		reportFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricReportFailures,
				Help: "Total number of insight report computations that failed by scope",
			},
			[]string{"scope"},
		),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricReportDuration,
				Help:    "Insight report computation duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
			},
			[]string{"scope"},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.reportsTotal,
		m.reportFailures,
		m.reportDuration,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveReport records a completed report computation.
func (m *Metrics) ObserveReport(scope string, seconds float64) {
	m.reportsTotal.WithLabelValues(scope).Inc()
	m.reportDuration.WithLabelValues(scope).Observe(seconds)
}

// IncReportFailures increments the failure counter for a scope.
func (m *Metrics) IncReportFailures(scope string) {
	m.reportFailures.WithLabelValues(scope).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.reportsTotal,
		m.reportFailures,
		m.reportDuration,
	}
}
