// Package insights turns raw lesson-run and comment records into
// time-windowed, ranked, bucketed insight reports.
package insights

import "time"

// TimeWindow is the [Start, End) UTC range a report covers.
// Built once per request and never mutated.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// dayKeyFormat is the UTC calendar-day key used for bucketing.
const dayKeyFormat = "2006-01-02"

// ResolveWindow computes the report window ending at now.
// A zero day count yields Start == End, which still enumerates one day key.
func ResolveWindow(days int, now time.Time) TimeWindow {
	end := now.UTC()
	return TimeWindow{
		Start: end.Add(-time.Duration(days) * 24 * time.Hour),
		End:   end,
	}
}

// DayKeys enumerates every UTC calendar day from Start to End inclusive,
// as "YYYY-MM-DD" keys in ascending order. Comparison is date-only, so a
// window shorter than a day still produces a key.
func (w TimeWindow) DayKeys() []string {
	start := w.Start.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end := w.End.UTC()
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var keys []string
	for !day.After(last) {
		keys = append(keys, day.Format(dayKeyFormat))
		day = day.AddDate(0, 0, 1)
	}
	return keys
}
