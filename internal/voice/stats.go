package voice

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ParseStats tracks cumulative line-parse statistics across reads.
// All operations are thread-safe using atomic counters.
type ParseStats struct {
	accepted int64 // lines decoded and validated
	rejected int64 // malformed or schema-invalid lines
}

// NewParseStats creates a new ParseStats instance.
func NewParseStats() *ParseStats {
	return &ParseStats{}
}

// RecordAccepted increments the accepted counter.
func (s *ParseStats) RecordAccepted() {
	atomic.AddInt64(&s.accepted, 1)
}

// RecordRejected increments the rejected counter.
func (s *ParseStats) RecordRejected() {
	atomic.AddInt64(&s.rejected, 1)
}

// Accepted returns the total number of accepted lines.
func (s *ParseStats) Accepted() int64 {
	return atomic.LoadInt64(&s.accepted)
}

// Rejected returns the total number of rejected lines.
func (s *ParseStats) Rejected() int64 {
	return atomic.LoadInt64(&s.rejected)
}

// Total returns the total number of processed lines.
func (s *ParseStats) Total() int64 {
	return s.Accepted() + s.Rejected()
}

// Reset resets all counters to zero.
func (s *ParseStats) Reset() {
	atomic.StoreInt64(&s.accepted, 0)
	atomic.StoreInt64(&s.rejected, 0)
}

// String returns a human-readable summary of the statistics.
func (s *ParseStats) String() string {
	return fmt.Sprintf("accepted=%d rejected=%d total=%d", s.Accepted(), s.Rejected(), s.Total())
}

// LogSummary logs a summary of parse statistics at INFO level.
func (s *ParseStats) LogSummary(logger *slog.Logger) {
	logger.Info("telemetry parse statistics",
		"accepted", s.Accepted(),
		"rejected", s.Rejected(),
		"total", s.Total(),
	)
}
