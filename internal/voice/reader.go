package voice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ReadResult is the outcome of a best-effort window read.
type ReadResult struct {
	Events       []Event
	ParseErrors  int
	FilesRead    int
	FilesMissing int
}

// Reader loads telemetry events for the last N UTC calendar days.
// One corrupt line or one missing day never aborts the read; the result
// carries whatever was recoverable plus a parse error count.
type Reader struct {
	source  LogSource
	stats   *ParseStats
	metrics *Metrics
}

// NewReader creates a telemetry reader over the given source.
func NewReader(source LogSource, metrics *Metrics) *Reader {
	return &Reader{
		source:  source,
		stats:   NewParseStats(),
		metrics: metrics,
	}
}

// Stats returns the reader's cumulative parse statistics.
func (r *Reader) Stats() *ParseStats {
	return r.stats
}

// ReadWindow reads and parses the logs for the last days UTC calendar days
// ending at now, today included. Day files are read oldest first; absent or
// unreadable files are skipped.
func (r *Reader) ReadWindow(ctx context.Context, days int, now time.Time) (*ReadResult, error) {
	result := &ReadResult{Events: []Event{}}

	today := now.UTC()
	for i := days - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		data, err := r.source.ReadDay(ctx, date)
		if err != nil {
			if !errors.Is(err, ErrDayAbsent) {
				// An unreadable file is treated the same as an absent one:
				// it contributes nothing and the read continues.
				slog.WarnContext(ctx, "skipping unreadable telemetry log", "date", date, "error", err)
			}
			result.FilesMissing++
			r.metrics.filesMissing.Inc()
			continue
		}

		result.FilesRead++
		r.metrics.filesRead.Inc()
		r.parseLines(data, result)
	}

	return result, nil
}

// parseLines decodes each non-empty line tolerantly: malformed JSON and
// schema-invalid events are counted, never raised.
func (r *Reader) parseLines(data []byte, result *ReadResult) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			result.ParseErrors++
			r.stats.RecordRejected()
			r.metrics.parseErrors.Inc()
			continue
		}
		if err := event.Validate(); err != nil {
			result.ParseErrors++
			r.stats.RecordRejected()
			r.metrics.parseErrors.Inc()
			continue
		}

		result.Events = append(result.Events, event)
		r.stats.RecordAccepted()
		r.metrics.eventsRead.Inc()
	}
}
