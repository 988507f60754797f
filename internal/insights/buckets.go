package insights

import (
	"sort"

	"github.com/kinolearn/insights/internal/lesson"
)

// DailyBucket is one UTC calendar day's aggregated slice of a window.
type DailyBucket struct {
	Date string `json:"date"` // "YYYY-MM-DD", UTC
	Runs int    `json:"runs"`
	// AvgScorePercent is nil until a scored run lands in the bucket.
	AvgScorePercent *float64 `json:"avg_score_percent"`
}

// BuildDailyBuckets groups completed runs into per-day buckets covering
// every UTC calendar day of the window. Buckets are pre-initialized to
// zero/nil so gap days are explicit in the output rather than omitted.
//
// The average is maintained incrementally, re-rounding to one decimal on
// each update, which matches how the live dashboard accumulates it. A run
// whose completion day falls outside the pre-populated range is dropped
// from bucketing only; it still counts toward window totals upstream.
func BuildDailyBuckets(window TimeWindow, runs []*lesson.RunRecord) []DailyBucket {
	keys := window.DayKeys()
	buckets := make([]DailyBucket, len(keys))
	index := make(map[string]int, len(keys))
	for i, key := range keys {
		buckets[i] = DailyBucket{Date: key}
		index[key] = i
	}

	// Scored runs per bucket; the divisor for the running mean.
	scoredCounts := make([]int, len(keys))

	for _, run := range runs {
		if !run.Completed() {
			continue
		}
		key := run.CompletedAt.UTC().Format(dayKeyFormat)
		i, ok := index[key]
		if !ok {
			continue
		}
		buckets[i].Runs++

		if run.MaxScore <= 0 {
			continue
		}
		scoredCounts[i]++
		n := float64(scoredCounts[i])
		prev := 0.0
		if buckets[i].AvgScorePercent != nil {
			prev = *buckets[i].AvgScorePercent
		}
		avg := roundTenth((prev*(n-1) + scorePercent(run)) / n)
		buckets[i].AvgScorePercent = &avg
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})

	return buckets
}
