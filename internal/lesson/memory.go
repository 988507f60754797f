package lesson

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex. Used in tests and local development.
type InMemoryStore struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace // slug -> workspace
	lessons    []*Lesson
	runs       []*RunRecord
	comments   []*CommentRecord
}

// NewInMemoryStore creates a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		workspaces: make(map[string]*Workspace),
	}
}

// AddWorkspace registers a workspace. A missing ID is generated.
func (s *InMemoryStore) AddWorkspace(ws *Workspace) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = time.Now()
	}
	s.workspaces[ws.Slug] = ws
	return ws
}

// AddLesson registers a lesson. A missing ID is generated.
func (s *InMemoryStore) AddLesson(l *Lesson) *Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	s.lessons = append(s.lessons, l)
	return l
}

// AddRun records a lesson run. Slug and title are filled in from the lesson
// when left empty. A missing ID is generated.
func (s *InMemoryStore) AddRun(run *RunRecord) *RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.LessonSlug == "" || run.LessonTitle == "" {
		for _, l := range s.lessons {
			if l.ID == run.LessonID {
				run.LessonSlug = l.Slug
				run.LessonTitle = l.Title
				break
			}
		}
	}
	s.runs = append(s.runs, run)
	return run
}

// AddComment records a lesson comment. A missing ID is generated.
func (s *InMemoryStore) AddComment(c *CommentRecord) *CommentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.LessonSlug == "" || c.LessonTitle == "" {
		for _, l := range s.lessons {
			if l.ID == c.LessonID {
				c.LessonSlug = l.Slug
				c.LessonTitle = l.Title
				break
			}
		}
	}
	s.comments = append(s.comments, c)
	return c
}

// FindWorkspace resolves a workspace by slug.
func (s *InMemoryStore) FindWorkspace(ctx context.Context, slug string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[slug]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	wsCopy := *ws
	return &wsCopy, nil
}

// FindLesson resolves a lesson by workspace and lesson slug.
func (s *InMemoryStore) FindLesson(ctx context.Context, workspaceSlug, lessonSlug string) (*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[workspaceSlug]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	for _, l := range s.lessons {
		if l.WorkspaceID == ws.ID && l.Slug == lessonSlug {
			lCopy := *l
			return &lCopy, nil
		}
	}
	return nil, ErrLessonNotFound
}

// lessonWorkspace returns the workspace ID a lesson belongs to, or "".
func (s *InMemoryStore) lessonWorkspace(lessonID string) string {
	for _, l := range s.lessons {
		if l.ID == lessonID {
			return l.WorkspaceID
		}
	}
	return ""
}

// FindRuns returns runs in scope started at or after since, ordered by
// (started_at, id) for deterministic downstream grouping.
func (s *InMemoryStore) FindRuns(ctx context.Context, scope Scope, since time.Time) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*RunRecord{}
	for _, run := range s.runs {
		if scope.LessonID != "" && run.LessonID != scope.LessonID {
			continue
		}
		if scope.LessonID == "" && s.lessonWorkspace(run.LessonID) != scope.WorkspaceID {
			continue
		}
		if run.StartedAt.Before(since) {
			continue
		}
		runCopy := *run
		if run.CompletedAt != nil {
			at := *run.CompletedAt
			runCopy.CompletedAt = &at
		}
		if run.SessionID != nil {
			sid := *run.SessionID
			runCopy.SessionID = &sid
		}
		result = append(result, &runCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartedAt.Before(result[j].StartedAt)
	})

	return result, nil
}

// FindComments returns comments in scope created at or after since, ordered
// by (created_at, id).
func (s *InMemoryStore) FindComments(ctx context.Context, scope Scope, since time.Time) ([]*CommentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*CommentRecord{}
	for _, c := range s.comments {
		if scope.LessonID != "" && c.LessonID != scope.LessonID {
			continue
		}
		if scope.LessonID == "" && s.lessonWorkspace(c.LessonID) != scope.WorkspaceID {
			continue
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		cCopy := *c
		result = append(result, &cCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
