package issues

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists projects, the violation catalog, and recorded issues.
// Implementations must be safe for concurrent use.
type Store interface {
	// Seed loads catalog data. Existing projects and violations with the
	// same IDs are overwritten; recorded issues are left alone.
	Seed(ctx context.Context, cat Catalog) error

	Project(ctx context.Context, id string) (Project, error)
	Projects(ctx context.Context) ([]Project, error)

	Violation(ctx context.Context, id string) (Violation, error)
	Violations(ctx context.Context) ([]Violation, error)

	Issue(ctx context.Context, id string) (Issue, error)
	IssuesByProject(ctx context.Context, projectID string) ([]Issue, error)

	// CreateIssue stores a new issue. A missing ID is assigned and the
	// create/update timestamps are stamped by the store.
	CreateIssue(ctx context.Context, issue Issue) (Issue, error)

	// UpdateIssue replaces the stored issue with the same ID, preserving
	// CreatedAt and stamping UpdatedAt.
	UpdateIssue(ctx context.Context, issue Issue) (Issue, error)
}

// MemoryStore is an in-memory Store backed by maps and a mutex. It is the
// default store and is suitable for demos and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	projects   map[string]Project
	violations map[string]Violation
	issues     map[string]Issue
	now        func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:   map[string]Project{},
		violations: map[string]Violation{},
		issues:     map[string]Issue{},
		now:        time.Now,
	}
}

func (s *MemoryStore) Seed(_ context.Context, cat Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range cat.Projects {
		s.projects[p.ID] = p
	}
	for _, v := range cat.Violations {
		s.violations[v.ID] = v
	}
	return nil
}

func (s *MemoryStore) Project(_ context.Context, id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return Project{}, fmt.Errorf("issues: project %q: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) Projects(_ context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Violation(_ context.Context, id string) (Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.violations[id]
	if !ok {
		return Violation{}, fmt.Errorf("issues: violation %q: %w", id, ErrNotFound)
	}
	return v, nil
}

func (s *MemoryStore) Violations(_ context.Context) ([]Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Violation, 0, len(s.violations))
	for _, v := range s.violations {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Issue(_ context.Context, id string) (Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[id]
	if !ok {
		return Issue{}, fmt.Errorf("issues: issue %q: %w", id, ErrNotFound)
	}
	return issue, nil
}

func (s *MemoryStore) IssuesByProject(_ context.Context, projectID string) ([]Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Issue, 0)
	for _, issue := range s.issues {
		if issue.ProjectID == projectID {
			out = append(out, issue)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateIssue(_ context.Context, issue Issue) (Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[issue.ProjectID]; !ok {
		return Issue{}, fmt.Errorf("issues: create issue: project %q: %w", issue.ProjectID, ErrNotFound)
	}
	if _, ok := s.violations[issue.ViolationID]; !ok {
		return Issue{}, fmt.Errorf("issues: create issue: violation %q: %w", issue.ViolationID, ErrNotFound)
	}
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := s.now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	s.issues[issue.ID] = issue
	return issue, nil
}

func (s *MemoryStore) UpdateIssue(_ context.Context, issue Issue) (Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.issues[issue.ID]
	if !ok {
		return Issue{}, fmt.Errorf("issues: issue %q: %w", issue.ID, ErrNotFound)
	}
	issue.ProjectID = stored.ProjectID
	issue.CreatedAt = stored.CreatedAt
	issue.UpdatedAt = s.now()
	if issue.ViolationID == "" {
		issue.ViolationID = stored.ViolationID
	}
	s.issues[issue.ID] = issue
	return issue, nil
}
