package repository

import (
	"context"

	"sixseven-backend/internal/domain/model"
)

// JobFilter narrows ListJobs results. Zero-value fields are ignored.
type JobFilter struct {
	SessionID string
	Type      model.JobType
	Status    model.JobStatus
	Limit     int
}

// Store owns all Job and Session state. Implementations must be safe under
// concurrent invocation; callers always receive copies and write back through
// the update operations.
type Store interface {
	CreateJob(ctx context.Context, job *model.Job) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// UpdateJob refreshes updated_at and overwrites by id, except that a
	// stored terminal status and a set cancelled flag are never regressed.
	// The merged job as stored is returned.
	UpdateJob(ctx context.Context, job *model.Job) (*model.Job, error)
	// ListJobs returns matches sorted by created_at descending.
	ListJobs(ctx context.Context, filter JobFilter) ([]*model.Job, error)

	GetSession(ctx context.Context, id string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) (*model.Session, error)
}
