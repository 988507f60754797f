// Package lesson provides the lesson-run and comment records consumed by the
// analytics engine, together with the event store they are read from.
package lesson

import (
	"context"
	"errors"
	"time"
)

// Common errors for store lookups.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrLessonNotFound    = errors.New("lesson not found")
)

// Mode is the play mode a lesson run was started in.
type Mode string

// Supported run modes.
const (
	ModeFocus  Mode = "focus"
	ModeArcade Mode = "arcade"
)

// CommentStatus is the moderation state of a lesson comment.
type CommentStatus string

// Supported comment statuses.
const (
	CommentOpen     CommentStatus = "open"
	CommentResolved CommentStatus = "resolved"
)

// Workspace is the tenant a set of lessons belongs to.
type Workspace struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Lesson is one interactive video lesson within a workspace.
type Lesson struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunRecord is a single learner pass through a lesson.
// A run with CompletedAt == nil is still in progress: it exists in the
// store and counts toward run totals, but carries no usable score yet.
type RunRecord struct {
	ID          string     `json:"id"`
	LessonID    string     `json:"lesson_id"`
	LessonSlug  string     `json:"lesson_slug"`
	LessonTitle string     `json:"lesson_title"`
	Score       int        `json:"score"`
	MaxScore    int        `json:"max_score"`
	Mode        Mode       `json:"mode"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	SessionID   *string    `json:"session_id,omitempty"` // anonymous learner session
}

// Completed reports whether the run has finished.
func (r *RunRecord) Completed() bool {
	return r.CompletedAt != nil
}

// CommentRecord is a learner or author comment left on a lesson.
type CommentRecord struct {
	ID          string        `json:"id"`
	LessonID    string        `json:"lesson_id"`
	LessonSlug  string        `json:"lesson_slug"`
	LessonTitle string        `json:"lesson_title"`
	AuthorName  string        `json:"author_name"`
	Status      CommentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Scope filters store queries to a workspace and, optionally, one lesson.
// An empty LessonID means workspace-wide scope.
type Scope struct {
	WorkspaceID string
	LessonID    string
}

// Store is the event store the analytics engine reads from. Implementations
// return records whose window field (StartedAt for runs, CreatedAt for
// comments) is at or after the given instant; the upper bound is implicit.
type Store interface {
	// FindWorkspace resolves a workspace by slug.
	// Returns ErrWorkspaceNotFound if no such workspace exists.
	FindWorkspace(ctx context.Context, slug string) (*Workspace, error)

	// FindLesson resolves a lesson by workspace and lesson slug.
	// Returns ErrWorkspaceNotFound or ErrLessonNotFound as appropriate.
	FindLesson(ctx context.Context, workspaceSlug, lessonSlug string) (*Lesson, error)

	// FindRuns returns runs in scope started at or after since, in a stable
	// order (started_at, then id). In-progress runs are included.
	FindRuns(ctx context.Context, scope Scope, since time.Time) ([]*RunRecord, error)

	// FindComments returns comments in scope created at or after since, in a
	// stable order (created_at, then id).
	FindComments(ctx context.Context, scope Scope, since time.Time) ([]*CommentRecord, error)
}
