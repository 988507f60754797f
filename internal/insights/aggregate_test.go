package insights

import (
	"testing"
	"time"

	"github.com/kinolearn/insights/internal/lesson"
)

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func completedRun(lessonID string, score, maxScore int, completedAt time.Time) *lesson.RunRecord {
	return &lesson.RunRecord{
		LessonID:    lessonID,
		LessonSlug:  lessonID + "-slug",
		LessonTitle: lessonID + " title",
		Score:       score,
		MaxScore:    maxScore,
		StartedAt:   completedAt.Add(-10 * time.Minute),
		CompletedAt: timePtr(completedAt),
	}
}

func TestRoundTenth(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{83.333333, 83.3},
		{83.35, 83.4},
		{66.666666, 66.7},
		{90.0, 90.0},
		{0.05, 0.1},
	}

	for _, tt := range tests {
		if got := roundTenth(tt.in); got != tt.want {
			t.Errorf("roundTenth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSummarizeRuns(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("averages only scored runs", func(t *testing.T) {
		runs := []*lesson.RunRecord{
			completedRun("l1", 80, 100, at),
			completedRun("l1", 100, 100, at),
			completedRun("l1", 5, 0, at), // maxScore 0, no usable score
		}

		summary := SummarizeRuns(runs)
		if summary.TotalRuns != 3 {
			t.Errorf("TotalRuns = %d, want 3", summary.TotalRuns)
		}
		if summary.AvgScorePercent == nil || *summary.AvgScorePercent != 90.0 {
			t.Errorf("AvgScorePercent = %v, want 90.0", summary.AvgScorePercent)
		}
	})

	t.Run("in-progress runs count but do not score", func(t *testing.T) {
		runs := []*lesson.RunRecord{
			completedRun("l1", 50, 100, at),
			{LessonID: "l1", Score: 0, MaxScore: 100, StartedAt: at}, // in progress
		}

		summary := SummarizeRuns(runs)
		if summary.TotalRuns != 2 {
			t.Errorf("TotalRuns = %d, want 2", summary.TotalRuns)
		}
		if summary.AvgScorePercent == nil || *summary.AvgScorePercent != 50.0 {
			t.Errorf("AvgScorePercent = %v, want 50.0", summary.AvgScorePercent)
		}
	})

	t.Run("nil average when nothing scored", func(t *testing.T) {
		runs := []*lesson.RunRecord{
			{LessonID: "l1", StartedAt: at},
			completedRun("l1", 3, 0, at),
		}

		summary := SummarizeRuns(runs)
		if summary.AvgScorePercent != nil {
			t.Errorf("AvgScorePercent = %v, want nil", *summary.AvgScorePercent)
		}
	})

	t.Run("unique sessions deduplicated", func(t *testing.T) {
		r1 := completedRun("l1", 80, 100, at)
		r1.SessionID = strPtr("sess-a")
		r2 := completedRun("l1", 90, 100, at)
		r2.SessionID = strPtr("sess-a")
		r3 := completedRun("l1", 70, 100, at)
		r3.SessionID = strPtr("sess-b")
		r4 := completedRun("l1", 60, 100, at) // no session

		summary := SummarizeRuns([]*lesson.RunRecord{r1, r2, r3, r4})
		if summary.UniqueSessions != 2 {
			t.Errorf("UniqueSessions = %d, want 2", summary.UniqueSessions)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		summary := SummarizeRuns(nil)
		if summary.TotalRuns != 0 || summary.AvgScorePercent != nil || summary.UniqueSessions != 0 {
			t.Errorf("unexpected summary for empty input: %+v", summary)
		}
	})
}

func TestGroupByLesson(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	runs := []*lesson.RunRecord{
		completedRun("l1", 80, 100, at),
		completedRun("l2", 30, 100, at),
		completedRun("l1", 100, 100, at),
		{LessonID: "l2", LessonSlug: "l2-slug", LessonTitle: "l2 title", StartedAt: at},
	}

	stats := GroupByLesson(runs)
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	// First-seen order preserved
	if stats[0].LessonID != "l1" || stats[1].LessonID != "l2" {
		t.Errorf("order = [%s, %s], want [l1, l2]", stats[0].LessonID, stats[1].LessonID)
	}

	if stats[0].RunCount != 2 {
		t.Errorf("l1 RunCount = %d, want 2", stats[0].RunCount)
	}
	if avg := stats[0].AvgScorePercent(); avg == nil || *avg != 90.0 {
		t.Errorf("l1 avg = %v, want 90.0", avg)
	}

	// l2 has one completed scored run and one in-progress run
	if stats[1].RunCount != 2 {
		t.Errorf("l2 RunCount = %d, want 2", stats[1].RunCount)
	}
	if stats[1].ValidScores() != 1 {
		t.Errorf("l2 ValidScores = %d, want 1", stats[1].ValidScores())
	}
	if avg := stats[1].AvgScorePercent(); avg == nil || *avg != 30.0 {
		t.Errorf("l2 avg = %v, want 30.0", avg)
	}
}
