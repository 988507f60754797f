package insights

import "sort"

// Ranking limits. A lesson needs a minimum number of runs before a low
// average is treated as a struggle signal; one or two bad runs say nothing.
const (
	rankingLimit      = 3
	minStrugglingRuns = 3
)

// LessonRanking is one entry in a top-lessons list.
type LessonRanking struct {
	LessonSlug      string   `json:"lesson_slug"`
	LessonTitle     string   `json:"lesson_title"`
	Runs            int      `json:"runs"`
	AvgScorePercent *float64 `json:"avg_score_percent"`
}

func toRanking(st *LessonStats) LessonRanking {
	return LessonRanking{
		LessonSlug:      st.LessonSlug,
		LessonTitle:     st.LessonTitle,
		Runs:            st.RunCount,
		AvgScorePercent: st.AvgScorePercent(),
	}
}

// StrugglingLessons returns up to three lessons with the lowest average
// score, considering only lessons with at least minStrugglingRuns runs and
// at least one usable score. Ties keep the input (first-seen) order.
func StrugglingLessons(stats []*LessonStats) []LessonRanking {
	var eligible []*LessonStats
	for _, st := range stats {
		if st.RunCount >= minStrugglingRuns && st.ValidScores() > 0 {
			eligible = append(eligible, st)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return *eligible[i].AvgScorePercent() < *eligible[j].AvgScorePercent()
	})

	result := []LessonRanking{}
	for _, st := range eligible {
		if len(result) == rankingLimit {
			break
		}
		result = append(result, toRanking(st))
	}
	return result
}

// EngagedLessons returns up to three lessons with the most runs. There is
// no minimum-sample floor and the average may be nil. Ties keep the input
// (first-seen) order.
func EngagedLessons(stats []*LessonStats) []LessonRanking {
	ordered := make([]*LessonStats, len(stats))
	copy(ordered, stats)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RunCount > ordered[j].RunCount
	})

	result := []LessonRanking{}
	for _, st := range ordered {
		if len(result) == rankingLimit {
			break
		}
		result = append(result, toRanking(st))
	}
	return result
}
