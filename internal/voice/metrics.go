// Package voice provides metrics for telemetry log reading.
package voice

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricEventsRead   = "voice_telemetry_events_total"
	MetricParseErrors  = "voice_telemetry_parse_errors_total"
	MetricFilesRead    = "voice_telemetry_files_read_total"
	MetricFilesMissing = "voice_telemetry_files_missing_total"
)

// Metrics contains Prometheus metrics for telemetry reads.
// All operations are thread-safe.
type Metrics struct {
	eventsRead   prometheus.Counter
	parseErrors  prometheus.Counter
	filesRead    prometheus.Counter
	filesMissing prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		eventsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricEventsRead,
			Help: "Total number of valid telemetry events read",
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricParseErrors,
			Help: "Total number of malformed or schema-invalid telemetry lines",
		}),
		filesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricFilesRead,
			Help: "Total number of day log files read",
		}),
		filesMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricFilesMissing,
			Help: "Total number of day log files that were absent or unreadable",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.eventsRead,
		m.parseErrors,
		m.filesRead,
		m.filesMissing,
	}
}
