package insights

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kinolearn/insights/internal/lesson"
	"github.com/kinolearn/insights/internal/tracing"
)

// Activity feed limits per report scope.
const (
	workspaceActivityLimit = 5
	lessonActivityLimit    = 10
)

// Scope labels for metrics.
const (
	scopeWorkspace = "workspace"
	scopeLesson    = "lesson"
)

// WorkspaceInsights is the computed workspace-level report.
// It is a fresh value per request; nothing here is cached or persisted.
type WorkspaceInsights struct {
	WorkspaceSlug   string          `json:"workspace_slug"`
	WindowDays      int             `json:"window_days"`
	Window          TimeWindow      `json:"window"`
	TotalRuns       int             `json:"total_runs"`
	AvgScorePercent *float64        `json:"avg_score_percent"`
	UniqueSessions  int             `json:"unique_sessions"`
	TotalComments   int             `json:"total_comments"`
	TopStruggling   []LessonRanking `json:"top_struggling_lessons"`
	TopEngaged      []LessonRanking `json:"top_engaged_lessons"`
	RecentActivity  []ActivityEntry `json:"recent_activity"`
}

// ModeBreakdown counts runs by play mode.
type ModeBreakdown struct {
	FocusRuns  int `json:"focus_runs"`
	ArcadeRuns int `json:"arcade_runs"`
}

// LessonInsights is the computed single-lesson report.
type LessonInsights struct {
	WorkspaceSlug    string          `json:"workspace_slug"`
	LessonSlug       string          `json:"lesson_slug"`
	LessonTitle      string          `json:"lesson_title"`
	WindowDays       int             `json:"window_days"`
	Window           TimeWindow      `json:"window"`
	TotalRuns        int             `json:"total_runs"`
	AvgScorePercent  *float64        `json:"avg_score_percent"`
	UniqueSessions   int             `json:"unique_sessions"`
	Modes            ModeBreakdown   `json:"mode_breakdown"`
	OpenComments     int             `json:"open_comments"`
	ResolvedComments int             `json:"resolved_comments"`
	DailyBuckets     []DailyBucket   `json:"daily_buckets"`
	RecentActivity   []ActivityEntry `json:"recent_activity"`
}

// Service assembles insight reports from the event store.
type Service struct {
	store   lesson.Store
	metrics *Metrics
	now     func() time.Time // for testability
}

// NewService creates a new report service.
func NewService(store lesson.Store, metrics *Metrics) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		now:     time.Now,
	}
}

// WorkspaceInsights computes the workspace report for the given window.
// Returns lesson.ErrWorkspaceNotFound if the slug does not resolve.
func (s *Service) WorkspaceInsights(ctx context.Context, workspaceSlug string, windowDays int) (report *WorkspaceInsights, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "workspace_insights")
	defer func() { endSpan(err) }()
	tracing.SetAttributes(ctx,
		attribute.String("workspace", workspaceSlug),
		attribute.Int("window_days", windowDays),
	)

	start := time.Now()

	ws, err := s.store.FindWorkspace(ctx, workspaceSlug)
	if err != nil {
		return nil, err
	}

	window := ResolveWindow(windowDays, s.now())
	scope := lesson.Scope{WorkspaceID: ws.ID}

	runs, err := s.store.FindRuns(ctx, scope, window.Start)
	if err != nil {
		s.metrics.IncReportFailures(scopeWorkspace)
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	comments, err := s.store.FindComments(ctx, scope, window.Start)
	if err != nil {
		s.metrics.IncReportFailures(scopeWorkspace)
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	summary := SummarizeRuns(runs)
	stats := GroupByLesson(runs)

	report = &WorkspaceInsights{
		WorkspaceSlug:   ws.Slug,
		WindowDays:      windowDays,
		Window:          window,
		TotalRuns:       summary.TotalRuns,
		AvgScorePercent: summary.AvgScorePercent,
		UniqueSessions:  summary.UniqueSessions,
		TotalComments:   len(comments),
		TopStruggling:   StrugglingLessons(stats),
		TopEngaged:      EngagedLessons(stats),
		RecentActivity:  BuildActivity(runs, comments, workspaceActivityLimit),
	}

	s.metrics.ObserveReport(scopeWorkspace, time.Since(start).Seconds())
	return report, nil
}

// LessonInsights computes the single-lesson report for the given window.
// Returns lesson.ErrWorkspaceNotFound or lesson.ErrLessonNotFound if the
// slugs do not resolve.
func (s *Service) LessonInsights(ctx context.Context, workspaceSlug, lessonSlug string, windowDays int) (report *LessonInsights, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "lesson_insights")
	defer func() { endSpan(err) }()
	tracing.SetAttributes(ctx,
		attribute.String("workspace", workspaceSlug),
		attribute.String("lesson", lessonSlug),
		attribute.Int("window_days", windowDays),
	)

	start := time.Now()

	l, err := s.store.FindLesson(ctx, workspaceSlug, lessonSlug)
	if err != nil {
		return nil, err
	}

	window := ResolveWindow(windowDays, s.now())
	scope := lesson.Scope{WorkspaceID: l.WorkspaceID, LessonID: l.ID}

	runs, err := s.store.FindRuns(ctx, scope, window.Start)
	if err != nil {
		s.metrics.IncReportFailures(scopeLesson)
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	comments, err := s.store.FindComments(ctx, scope, window.Start)
	if err != nil {
		s.metrics.IncReportFailures(scopeLesson)
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	summary := SummarizeRuns(runs)

	var modes ModeBreakdown
	for _, run := range runs {
		switch run.Mode {
		case lesson.ModeFocus:
			modes.FocusRuns++
		case lesson.ModeArcade:
			modes.ArcadeRuns++
		}
	}

	var open, resolved int
	for _, c := range comments {
		switch c.Status {
		case lesson.CommentResolved:
			resolved++
		default:
			open++
		}
	}

	report = &LessonInsights{
		WorkspaceSlug:    workspaceSlug,
		LessonSlug:       l.Slug,
		LessonTitle:      l.Title,
		WindowDays:       windowDays,
		Window:           window,
		TotalRuns:        summary.TotalRuns,
		AvgScorePercent:  summary.AvgScorePercent,
		UniqueSessions:   summary.UniqueSessions,
		Modes:            modes,
		OpenComments:     open,
		ResolvedComments: resolved,
		DailyBuckets:     BuildDailyBuckets(window, runs),
		RecentActivity:   BuildActivity(runs, comments, lessonActivityLimit),
	}

	s.metrics.ObserveReport(scopeLesson, time.Since(start).Seconds())
	return report, nil
}
