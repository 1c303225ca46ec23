// File: internal/usecase/status_uc.go
package usecase

import (
	"context"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

// StatusReport is the read-only snapshot for a session's active job.
type StatusReport struct {
	ActiveJob *model.JobSummary `json:"active_job"`
	Message   string            `json:"message"`
}

type StatusUseCase interface {
	GetStatus(ctx context.Context, sessionID string) *StatusReport
}

type statusUC struct {
	store repository.Store
	log   *zerolog.Logger
}

func NewStatusUseCase(store repository.Store, log *zerolog.Logger) *statusUC {
	return &statusUC{store: store, log: log}
}

func (s *statusUC) GetStatus(ctx context.Context, sessionID string) *StatusReport {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil || session.ActiveJobID == "" {
		return &StatusReport{Message: FormatStatusMessage(nil)}
	}

	job, err := s.store.GetJob(ctx, session.ActiveJobID)
	if err != nil {
		// Dangling active_job_id; should not happen in the normal flow.
		s.log.Warn().Str("session_id", sessionID).Str("job_id", session.ActiveJobID).
			Msg("active job missing from store")
		return &StatusReport{Message: "No active tasks found."}
	}

	return &StatusReport{
		ActiveJob: &model.JobSummary{
			JobID:          job.ID,
			Type:           job.Type,
			Status:         job.Status,
			ElapsedSeconds: int(job.Elapsed().Seconds()),
			LastEvent:      job.LastEvent(),
		},
		Message: FormatStatusMessage(job),
	}
}
