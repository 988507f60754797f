package insights

import (
	"testing"
	"time"

	"github.com/kinolearn/insights/internal/lesson"
)

// statsFor builds LessonStats from (lessonID, runCount, scores) triples in
// first-seen order, via GroupByLesson so ordering semantics match production.
func statsFor(t *testing.T, lessons []struct {
	id     string
	scores []int // one completed 0..100 run per score; -1 means an unscored run
}) []*LessonStats {
	t.Helper()
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	var runs []*lesson.RunRecord
	for _, l := range lessons {
		for _, score := range l.scores {
			if score < 0 {
				runs = append(runs, &lesson.RunRecord{LessonID: l.id, StartedAt: at})
				continue
			}
			runs = append(runs, completedRun(l.id, score, 100, at))
		}
	}
	return GroupByLesson(runs)
}

func TestStrugglingLessons(t *testing.T) {
	t.Run("orders by ascending average and caps at three", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "l1", scores: []int{90, 90, 90}},
			{id: "l2", scores: []int{20, 30, 40}},
			{id: "l3", scores: []int{50, 50, 50}},
			{id: "l4", scores: []int{60, 70, 80}},
			{id: "l5", scores: []int{10, 10, 10}},
		})

		got := StrugglingLessons(stats)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		wantSlugs := []string{"l5-slug", "l2-slug", "l3-slug"}
		for i, want := range wantSlugs {
			if got[i].LessonSlug != want {
				t.Errorf("got[%d].LessonSlug = %q, want %q", i, got[i].LessonSlug, want)
			}
		}
	})

	t.Run("excludes lessons under the run floor", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "low-sample", scores: []int{0, 0}}, // terrible but only 2 runs
			{id: "eligible", scores: []int{80, 80, 80}},
		})

		got := StrugglingLessons(stats)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].LessonSlug != "eligible-slug" {
			t.Errorf("LessonSlug = %q, want %q", got[0].LessonSlug, "eligible-slug")
		}
	})

	t.Run("excludes lessons with no usable scores", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "unscored", scores: []int{-1, -1, -1}}, // 3 runs, none completed
		})

		if got := StrugglingLessons(stats); len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "l1", scores: []int{40, 40, 40}},
			{id: "l2", scores: []int{40, 40, 40}},
		})

		got := StrugglingLessons(stats)
		if len(got) != 2 || got[0].LessonSlug != "l1-slug" || got[1].LessonSlug != "l2-slug" {
			t.Errorf("tie order = %v, want l1 before l2", got)
		}
	})

	t.Run("empty input yields empty non-nil slice", func(t *testing.T) {
		got := StrugglingLessons(nil)
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty slice", got)
		}
	})
}

func TestEngagedLessons(t *testing.T) {
	t.Run("orders by descending run count and caps at three", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "l1", scores: []int{80}},
			{id: "l2", scores: []int{80, 80, 80, 80}},
			{id: "l3", scores: []int{80, 80}},
			{id: "l4", scores: []int{80, 80, 80}},
		})

		got := EngagedLessons(stats)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		wantSlugs := []string{"l2-slug", "l4-slug", "l3-slug"}
		for i, want := range wantSlugs {
			if got[i].LessonSlug != want {
				t.Errorf("got[%d].LessonSlug = %q, want %q", i, got[i].LessonSlug, want)
			}
		}
	})

	t.Run("single run and unscored lessons are eligible", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "l1", scores: []int{-1}}, // one in-progress run
		})

		got := EngagedLessons(stats)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Runs != 1 || got[0].AvgScorePercent != nil {
			t.Errorf("got %+v, want Runs=1 and nil average", got[0])
		}
	})

	t.Run("does not mutate input order", func(t *testing.T) {
		stats := statsFor(t, []struct {
			id     string
			scores []int
		}{
			{id: "l1", scores: []int{80}},
			{id: "l2", scores: []int{80, 80}},
		})

		EngagedLessons(stats)
		if stats[0].LessonID != "l1" {
			t.Errorf("input reordered, stats[0] = %s", stats[0].LessonID)
		}
	})
}
