// File: internal/usecase/status_uc_test.go
package usecase_test

import (
	"context"
	"testing"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/infra/store"
	"sixseven-backend/internal/usecase"
)

func TestGetStatusNoSession(t *testing.T) {
	s := store.NewMemoryStore()
	uc := usecase.NewStatusUseCase(s, newTestLogger())

	report := uc.GetStatus(context.Background(), "missing")

	if report.ActiveJob != nil {
		t.Error("expected no active job")
	}
	if report.Message != "No active tasks." {
		t.Errorf("unexpected message: %q", report.Message)
	}
}

func TestGetStatusSessionWithoutActiveJob(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if _, err := s.UpdateSession(ctx, model.NewSession("sess-1")); err != nil {
		t.Fatal(err)
	}
	uc := usecase.NewStatusUseCase(s, newTestLogger())

	report := uc.GetStatus(ctx, "sess-1")

	if report.ActiveJob != nil || report.Message != "No active tasks." {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestGetStatusActiveJobSummary(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	job := createQueuedJob(t, s, model.JobTypeResearch, "cats")

	running, _ := s.GetJob(ctx, job.ID)
	running.Status = model.JobStatusRunning
	running.AddEvent(model.EventInfo, "Research task started", nil)
	if _, err := s.UpdateJob(ctx, running); err != nil {
		t.Fatal(err)
	}

	sess := model.NewSession("sess-1")
	sess.ActiveJobID = job.ID
	if _, err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	uc := usecase.NewStatusUseCase(s, newTestLogger())
	report := uc.GetStatus(ctx, "sess-1")

	if report.ActiveJob == nil {
		t.Fatal("expected an active job summary")
	}
	if report.ActiveJob.JobID != job.ID || report.ActiveJob.Status != model.JobStatusRunning {
		t.Errorf("unexpected summary: %+v", report.ActiveJob)
	}
	if report.ActiveJob.LastEvent == nil || report.ActiveJob.LastEvent.Message != "Research task started" {
		t.Error("expected the latest event on the summary")
	}
	if report.Message == "" {
		t.Error("expected a speakable status message")
	}
}

func TestGetStatusDanglingJobID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	sess := model.NewSession("sess-1")
	sess.ActiveJobID = "gone"
	if _, err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	uc := usecase.NewStatusUseCase(s, newTestLogger())
	report := uc.GetStatus(ctx, "sess-1")

	if report.ActiveJob != nil {
		t.Error("expected no summary for a missing job")
	}
	if report.Message != "No active tasks found." {
		t.Errorf("unexpected message: %q", report.Message)
	}
}
