package lesson

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kinolearn/insights/internal/tracing"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// HealthCheck pings the backing database. Used by the readiness probe.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FindWorkspace resolves a workspace by slug.
func (s *PostgresStore) FindWorkspace(ctx context.Context, slug string) (ws *Workspace, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "workspaces", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, slug, name, created_at
		FROM workspaces
		WHERE slug = $1
	`

	ws = &Workspace{}
	err = s.db.QueryRowContext(ctx, query, slug).Scan(&ws.ID, &ws.Slug, &ws.Name, &ws.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	return ws, nil
}

// FindLesson resolves a lesson by workspace and lesson slug.
func (s *PostgresStore) FindLesson(ctx context.Context, workspaceSlug, lessonSlug string) (l *Lesson, err error) {
	// Resolve the workspace first so a missing workspace and a missing
	// lesson surface as distinct errors.
	ws, err := s.FindWorkspace(ctx, workspaceSlug)
	if err != nil {
		return nil, err
	}

	ctx, endSpan := tracing.StartDBSpan(ctx, "lessons", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, workspace_id, slug, title, created_at
		FROM lessons
		WHERE workspace_id = $1 AND slug = $2
	`

	l = &Lesson{}
	err = s.db.QueryRowContext(ctx, query, ws.ID, lessonSlug).Scan(&l.ID, &l.WorkspaceID, &l.Slug, &l.Title, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lesson: %w", err)
	}

	return l, nil
}

// FindRuns returns runs in scope started at or after since,
// ordered by (started_at, id).
func (s *PostgresStore) FindRuns(ctx context.Context, scope Scope, since time.Time) (runs []*RunRecord, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "lesson_runs", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT r.id, r.lesson_id, l.slug, l.title,
		       r.score, r.max_score, r.mode,
		       r.started_at, r.completed_at, r.session_id
		FROM lesson_runs r
		JOIN lessons l ON l.id = r.lesson_id
		WHERE l.workspace_id = $1 AND r.started_at >= $2
	`
	args := []any{scope.WorkspaceID, since}
	if scope.LessonID != "" {
		query += ` AND r.lesson_id = $3`
		args = append(args, scope.LessonID)
	}
	query += ` ORDER BY r.started_at ASC, r.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		run := &RunRecord{}
		var completedAt sql.NullTime
		var sessionID sql.NullString
		err := rows.Scan(
			&run.ID,
			&run.LessonID,
			&run.LessonSlug,
			&run.LessonTitle,
			&run.Score,
			&run.MaxScore,
			&run.Mode,
			&run.StartedAt,
			&completedAt,
			&sessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson run: %w", err)
		}
		if completedAt.Valid {
			at := completedAt.Time
			run.CompletedAt = &at
		}
		if sessionID.Valid {
			sid := sessionID.String
			run.SessionID = &sid
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lesson runs: %w", err)
	}

	return runs, nil
}

// FindComments returns comments in scope created at or after since,
// ordered by (created_at, id).
func (s *PostgresStore) FindComments(ctx context.Context, scope Scope, since time.Time) (comments []*CommentRecord, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "lesson_comments", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT c.id, c.lesson_id, l.slug, l.title,
		       c.author_name, c.status, c.created_at
		FROM lesson_comments c
		JOIN lessons l ON l.id = c.lesson_id
		WHERE l.workspace_id = $1 AND c.created_at >= $2
	`
	args := []any{scope.WorkspaceID, since}
	if scope.LessonID != "" {
		query += ` AND c.lesson_id = $3`
		args = append(args, scope.LessonID)
	}
	query += ` ORDER BY c.created_at ASC, c.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &CommentRecord{}
		err := rows.Scan(
			&c.ID,
			&c.LessonID,
			&c.LessonSlug,
			&c.LessonTitle,
			&c.AuthorName,
			&c.Status,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lesson comments: %w", err)
	}

	return comments, nil
}
