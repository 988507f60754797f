// Package export renders computed insight reports as deterministic CSV.
// Escaping is minimal: a field is quoted only when it contains a comma,
// quote, or line break; the row terminator is always "\n".
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/kinolearn/insights/internal/insights"
	"github.com/kinolearn/insights/internal/voice"
)

// nullValue renders missing numeric values.
const nullValue = "N/A"

// escapeField quotes a field iff it contains a comma, double quote, or
// line break, doubling internal quotes. Everything else passes verbatim.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeField(f))
	}
	b.WriteByte('\n')
}

// writeSection starts a labeled section: blank line, section label, header.
// The header row is always written, even when the section has no data rows.
func writeSection(b *strings.Builder, label string, header ...string) {
	b.WriteByte('\n')
	writeRow(b, label)
	writeRow(b, header...)
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}

// formatPercent renders an optional one-decimal percentage.
func formatPercent(p *float64) string {
	if p == nil {
		return nullValue
	}
	return strconv.FormatFloat(*p, 'f', 1, 64)
}

// formatRate renders a ratio with minimal digits.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatInstant renders any instant as a full ISO-8601 UTC timestamp.
func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatDay renders a "YYYY-MM-DD" bucket key as a full instant at
// midnight UTC; dates are never emitted date-only.
func formatDay(date string) string {
	return date + "T00:00:00Z"
}

func writeRankings(b *strings.Builder, label string, rankings []insights.LessonRanking) {
	writeSection(b, label, "Lesson Slug", "Lesson Title", "Runs", "Average Score Percent")
	for _, r := range rankings {
		writeRow(b, r.LessonSlug, r.LessonTitle, formatInt(r.Runs), formatPercent(r.AvgScorePercent))
	}
}

func writeActivity(b *strings.Builder, entries []insights.ActivityEntry) {
	writeSection(b, "Recent Activity", "Type", "Timestamp", "Description")
	for _, e := range entries {
		writeRow(b, e.Type, formatInstant(e.Timestamp), e.Description)
	}
}

// WorkspaceCSV renders a workspace insights report. Section order is fixed:
// Summary, Top Struggling Lessons, Top Engaged Lessons, Recent Activity.
func WorkspaceCSV(in *insights.WorkspaceInsights) string {
	var b strings.Builder

	writeRow(&b, "Workspace Insights", in.WorkspaceSlug)

	writeSection(&b, "Summary", "Metric", "Value")
	writeRow(&b, "Window Start", formatInstant(in.Window.Start))
	writeRow(&b, "Window End", formatInstant(in.Window.End))
	writeRow(&b, "Total Runs", formatInt(in.TotalRuns))
	writeRow(&b, "Average Score Percent", formatPercent(in.AvgScorePercent))
	writeRow(&b, "Unique Learner Sessions", formatInt(in.UniqueSessions))
	writeRow(&b, "Total Comments", formatInt(in.TotalComments))

	writeRankings(&b, "Top Struggling Lessons", in.TopStruggling)
	writeRankings(&b, "Top Engaged Lessons", in.TopEngaged)
	writeActivity(&b, in.RecentActivity)

	return b.String()
}

// LessonCSV renders a lesson insights report. Section order is fixed:
// Summary, Daily Buckets, Recent Activity.
func LessonCSV(in *insights.LessonInsights) string {
	var b strings.Builder

	writeRow(&b, "Lesson Insights", in.WorkspaceSlug+"/"+in.LessonSlug)

	writeSection(&b, "Summary", "Metric", "Value")
	writeRow(&b, "Lesson Title", in.LessonTitle)
	writeRow(&b, "Window Start", formatInstant(in.Window.Start))
	writeRow(&b, "Window End", formatInstant(in.Window.End))
	writeRow(&b, "Total Runs", formatInt(in.TotalRuns))
	writeRow(&b, "Average Score Percent", formatPercent(in.AvgScorePercent))
	writeRow(&b, "Unique Learner Sessions", formatInt(in.UniqueSessions))
	writeRow(&b, "Focus Runs", formatInt(in.Modes.FocusRuns))
	writeRow(&b, "Arcade Runs", formatInt(in.Modes.ArcadeRuns))
	writeRow(&b, "Open Comments", formatInt(in.OpenComments))
	writeRow(&b, "Resolved Comments", formatInt(in.ResolvedComments))

	writeSection(&b, "Daily Buckets", "Date", "Runs", "Average Score Percent")
	for _, bucket := range in.DailyBuckets {
		writeRow(&b, formatDay(bucket.Date), formatInt(bucket.Runs), formatPercent(bucket.AvgScorePercent))
	}

	writeActivity(&b, in.RecentActivity)

	return b.String()
}

// VoiceCSV renders a voice telemetry report. Section order is fixed:
// Summary, Top Interruption Points, Most Played Items, Most Stopped Items.
func VoiceCSV(res *voice.Result, parseErrors int) string {
	var b strings.Builder

	writeRow(&b, "Voice Analytics")

	writeSection(&b, "Summary", "Metric", "Value")
	writeRow(&b, "Total Events", formatInt(res.TotalEvents))
	writeRow(&b, "Total Plays", formatInt(res.TotalPlays))
	writeRow(&b, "Total Ends", formatInt(res.TotalEnds))
	writeRow(&b, "Total Stops", formatInt(res.TotalStops))
	writeRow(&b, "Completion Rate", formatRate(res.CompletionRate))
	writeRow(&b, "Replay Rate", formatRate(res.ReplayRate))
	writeRow(&b, "Parse Errors", formatInt(parseErrors))

	writeSection(&b, "Top Interruption Points", "Lesson Slug", "Level", "Item", "Reason", "Count")
	for _, p := range res.TopInterruptionPoints {
		writeRow(&b, p.LessonSlug, formatInt(p.LevelIndex), formatInt(p.ItemIndex), p.Reason, formatInt(p.Count))
	}

	writeSection(&b, "Most Played Items", "Lesson Slug", "Level", "Item", "Plays", "Stops")
	for _, c := range res.ItemLeaderboard.MostPlayed {
		writeRow(&b, c.LessonSlug, formatInt(c.LevelIndex), formatInt(c.ItemIndex), formatInt(c.Plays), formatInt(c.Stops))
	}

	writeSection(&b, "Most Stopped Items", "Lesson Slug", "Level", "Item", "Plays", "Stops")
	for _, c := range res.ItemLeaderboard.MostStopped {
		writeRow(&b, c.LessonSlug, formatInt(c.LevelIndex), formatInt(c.ItemIndex), formatInt(c.Plays), formatInt(c.Stops))
	}

	return b.String()
}
