// File: internal/usecase/cancel_uc.go
package usecase

import (
	"context"

	"sixseven-backend/internal/domain"
	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CancelUseCase = (*cancelUC)(nil)

type CancelUseCase interface {
	// Cancel resolves a candidate job (the session's active job, or a global
	// search when sessionID is empty) and cancels it. It returns the job id
	// and true when something was cancelled; terminal or absent candidates
	// are a no-op.
	Cancel(ctx context.Context, sessionID string) (string, bool)
	// CancelJob cancels one specific job. It returns domain.ErrJobTerminal
	// when the job already reached a terminal status.
	CancelJob(ctx context.Context, jobID string) (bool, error)
}

type cancelUC struct {
	store repository.Store
	log   *zerolog.Logger
}

func NewCancelUseCase(store repository.Store, log *zerolog.Logger) *cancelUC {
	return &cancelUC{store: store, log: log}
}

func (c *cancelUC) Cancel(ctx context.Context, sessionID string) (string, bool) {
	var job *model.Job

	if sessionID != "" {
		session, err := c.store.GetSession(ctx, sessionID)
		if err != nil || session.ActiveJobID == "" {
			return "", false
		}
		job, err = c.store.GetJob(ctx, session.ActiveJobID)
		if err != nil {
			return "", false
		}
	} else {
		// Global cancel: any running job first, then any queued one.
		job = c.firstWithStatus(ctx, model.JobStatusRunning)
		if job == nil {
			job = c.firstWithStatus(ctx, model.JobStatusQueued)
		}
	}

	if job == nil || !c.flip(ctx, job) {
		return "", false
	}
	return job.ID, true
}

func (c *cancelUC) CancelJob(ctx context.Context, jobID string) (bool, error) {
	job, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job.Status.Terminal() {
		return false, domain.ErrJobTerminal
	}
	return c.flip(ctx, job), nil
}

// flip sets the cooperative flag and the terminal status in one write. The
// store keeps both sticky, so flipping twice (or racing a runner commit) is
// idempotent. Returns false when the job was already terminal.
func (c *cancelUC) flip(ctx context.Context, job *model.Job) bool {
	if job.Status.Terminal() {
		return false
	}

	job.Cancelled = true
	job.Status = model.JobStatusCancelled
	job.AddEvent(model.EventInfo, "Job cancelled by user", nil)
	if _, err := c.store.UpdateJob(ctx, job); err != nil {
		c.log.Error().Err(err).Str("job_id", job.ID).Msg("cancel: update failed")
		return false
	}
	metrics.IncJobFinished(string(job.Type), string(model.JobStatusCancelled))
	c.log.Info().Str("job_id", job.ID).Msg("job cancelled")
	return true
}

func (c *cancelUC) firstWithStatus(ctx context.Context, status model.JobStatus) *model.Job {
	jobs, err := c.store.ListJobs(ctx, repository.JobFilter{Status: status, Limit: 1})
	if err != nil || len(jobs) == 0 {
		return nil
	}
	return jobs[0]
}
