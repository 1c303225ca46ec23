// File: internal/infra/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"sixseven-backend/internal/domain"
	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.Store = (*MemoryStore)(nil)

// MemoryStore keeps all jobs and sessions in process memory behind a single
// mutex. State lives for the process lifetime only. Every value crossing the
// boundary is deep-copied, so the maps are the only shared mutable state and
// they are never touched outside the lock.
type MemoryStore struct {
	mu       sync.Mutex
	jobs     map[string]*model.Job
	order    []string // insertion order, for stable global-cancel candidate lookup
	sessions map[string]*model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:     make(map[string]*model.Job),
		sessions: make(map[string]*model.Session),
	}
}

func (s *MemoryStore) CreateJob(ctx context.Context, job *model.Job) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.jobs[job.ID] = job.Clone()
	s.order = append(s.order, job.ID)
	return job.Clone(), nil
}

func (s *MemoryStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job.Clone(), nil
}

// UpdateJob is last-writer-wins until a terminal status lands; after that the
// first terminal outcome stays put and only the event log keeps growing. The
// cancelled flag never clears. This makes an external cancellation race-safe
// against an in-flight runner commit, including the runner's own final write:
// the runner sees the merge result and stops at its next checkpoint.
func (s *MemoryStore) UpdateJob(ctx context.Context, job *model.Job) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[job.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	next := job.Clone()
	next.Cancelled = next.Cancelled || cur.Cancelled
	if cur.Status.Terminal() {
		// First terminal write wins; accept only the event log growth.
		next.Status = cur.Status
		next.Result = cur.Result
		next.Error = cur.Error
		next.Progress = cur.Progress
	}
	next.UpdatedAt = time.Now()
	s.jobs[job.ID] = next
	return next.Clone(), nil
}

func (s *MemoryStore) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Job, 0, len(s.jobs))
	for _, id := range s.order {
		j := s.jobs[id]
		if filter.SessionID != "" && j.SessionID != filter.SessionID {
			continue
		}
		if filter.Type != "" && j.Type != filter.Type {
			continue
		}
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		out = append(out, j.Clone())
	}

	sort.SliceStable(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) UpdateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	cp.LastUpdatedAt = time.Now()
	s.sessions[cp.ID] = &cp
	out := cp
	return &out, nil
}
