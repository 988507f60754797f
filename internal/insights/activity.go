package insights

import (
	"sort"
	"strconv"
	"time"

	"github.com/kinolearn/insights/internal/lesson"
)

// Activity entry kinds.
const (
	ActivityRun     = "run"
	ActivityComment = "comment"
)

// ActivityEntry is one item in the recent-activity feed. Runs and comments
// share this shape so the two streams merge on a common timestamp.
type ActivityEntry struct {
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// runDescription renders a completed run's feed line. Runs without a usable
// score read as a bare completion.
func runDescription(run *lesson.RunRecord) string {
	if run.MaxScore <= 0 {
		return "Completed"
	}
	pct := roundTenth(scorePercent(run))
	return "Completed with " + strconv.FormatFloat(pct, 'f', -1, 64) + "% score"
}

// BuildActivity merges completed runs and comments into one feed sorted by
// most recent first, truncated to limit. In-progress runs are skipped.
// Timestamp ties resolve arbitrarily.
func BuildActivity(runs []*lesson.RunRecord, comments []*lesson.CommentRecord, limit int) []ActivityEntry {
	entries := []ActivityEntry{}

	for _, run := range runs {
		if !run.Completed() {
			continue
		}
		entries = append(entries, ActivityEntry{
			Type:        ActivityRun,
			Timestamp:   *run.CompletedAt,
			Description: runDescription(run),
		})
	}
	for _, c := range comments {
		entries = append(entries, ActivityEntry{
			Type:        ActivityComment,
			Timestamp:   c.CreatedAt,
			Description: "Comment added by " + c.AuthorName,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
