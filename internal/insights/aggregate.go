package insights

import (
	"math"

	"github.com/kinolearn/insights/internal/lesson"
)

// roundTenth rounds to one decimal place, half away from zero.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// scorePercent converts a run's score to a percentage, rounded elsewhere.
func scorePercent(run *lesson.RunRecord) float64 {
	return float64(run.Score) / float64(run.MaxScore) * 100
}

// scored reports whether a run contributes to score averages: it must be
// completed and have a positive maximum score.
func scored(run *lesson.RunRecord) bool {
	return run.Completed() && run.MaxScore > 0
}

// RunSummary holds the scalar metrics computed over a run set.
type RunSummary struct {
	TotalRuns int
	// AvgScorePercent is nil when no run in the set has a usable score.
	AvgScorePercent *float64
	UniqueSessions  int
}

// SummarizeRuns computes scalar metrics over runs already filtered to the
// window and scope. In-progress runs count toward TotalRuns and sessions
// but are excluded from the score average.
func SummarizeRuns(runs []*lesson.RunRecord) RunSummary {
	summary := RunSummary{TotalRuns: len(runs)}

	sum := 0.0
	scoredRuns := 0
	sessions := make(map[string]struct{})
	for _, run := range runs {
		if scored(run) {
			sum += scorePercent(run)
			scoredRuns++
		}
		if run.SessionID != nil && *run.SessionID != "" {
			sessions[*run.SessionID] = struct{}{}
		}
	}

	if scoredRuns > 0 {
		avg := roundTenth(sum / float64(scoredRuns))
		summary.AvgScorePercent = &avg
	}
	summary.UniqueSessions = len(sessions)

	return summary
}

// LessonStats accumulates per-lesson figures used by the ranking engine.
type LessonStats struct {
	LessonID    string
	LessonSlug  string
	LessonTitle string
	RunCount    int

	scoreSum    float64
	validScores int
}

// ValidScores returns how many runs contributed a usable score.
func (s *LessonStats) ValidScores() int {
	return s.validScores
}

// AvgScorePercent returns the lesson's rounded average score percentage,
// or nil when no run carried a usable score.
func (s *LessonStats) AvgScorePercent() *float64 {
	if s.validScores == 0 {
		return nil
	}
	avg := roundTenth(s.scoreSum / float64(s.validScores))
	return &avg
}

// GroupByLesson groups runs by lesson, preserving the order lessons first
// appear in the run set. That order is what makes ranking ties stable.
func GroupByLesson(runs []*lesson.RunRecord) []*LessonStats {
	index := make(map[string]*LessonStats)
	var stats []*LessonStats

	for _, run := range runs {
		st, ok := index[run.LessonID]
		if !ok {
			st = &LessonStats{
				LessonID:    run.LessonID,
				LessonSlug:  run.LessonSlug,
				LessonTitle: run.LessonTitle,
			}
			index[run.LessonID] = st
			stats = append(stats, st)
		}
		st.RunCount++
		if scored(run) {
			st.scoreSum += scorePercent(run)
			st.validScores++
		}
	}

	return stats
}
