// File: internal/infra/api/server_test.go
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/infra/api"
	"sixseven-backend/internal/infra/store"
	"sixseven-backend/internal/usecase"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// MockCommandUseCase records the last request and returns a canned response.
type MockCommandUseCase struct {
	HandleCommandFunc func(ctx context.Context, req *model.CommandRequest) *model.CommandResponse
	LastRequest       *model.CommandRequest
}

var _ usecase.CommandUseCase = (*MockCommandUseCase)(nil)

func (m *MockCommandUseCase) HandleCommand(ctx context.Context, req *model.CommandRequest) *model.CommandResponse {
	m.LastRequest = req
	if m.HandleCommandFunc != nil {
		return m.HandleCommandFunc(ctx, req)
	}
	return &model.CommandResponse{Intent: model.IntentUnknown, Message: "ok", SessionID: req.SessionID}
}

type serverFixture struct {
	store   *store.MemoryStore
	command *MockCommandUseCase
	srv     *httptest.Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	log := testLogger()
	s := store.NewMemoryStore()
	command := &MockCommandUseCase{}
	cancel := usecase.NewCancelUseCase(s, log)

	server := api.NewServer(command, cancel, s, log)
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	return &serverFixture{store: s, command: command, srv: srv}
}

func (f *serverFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(f.srv.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatal(err)
	}
}

func seedJob(t *testing.T, s *store.MemoryStore, sessionID string, jobType model.JobType, status model.JobStatus) *model.Job {
	t.Helper()
	ctx := context.Background()
	job := model.NewJob(sessionID, jobType, model.JobInput{CommandText: "test", QueryOrPrompt: "test"})
	if _, err := s.CreateJob(ctx, job); err != nil {
		t.Fatal(err)
	}
	if status != model.JobStatusQueued {
		cur, _ := s.GetJob(ctx, job.ID)
		cur.Status = status
		if _, err := s.UpdateJob(ctx, cur); err != nil {
			t.Fatal(err)
		}
	}
	return job
}

func TestHealthz(t *testing.T) {
	f := newServerFixture(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]bool
	decodeBody(t, resp, &body)
	if !body["ok"] {
		t.Error("expected ok:true")
	}
}

func TestRequestIDHeader(t *testing.T) {
	f := newServerFixture(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "req-keep-me")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-keep-me" {
		t.Errorf("expected caller id echoed back, got %q", got)
	}
}

func TestPostCommand(t *testing.T) {
	f := newServerFixture(t)
	f.command.HandleCommandFunc = func(ctx context.Context, req *model.CommandRequest) *model.CommandResponse {
		return &model.CommandResponse{
			Intent:    model.IntentResearch,
			Message:   "Starting research on: cats...",
			SessionID: "sess-1",
			JobID:     "job-1",
			Status:    model.JobStatusQueued,
		}
	}

	resp := f.postJSON(t, "/v1/command", map[string]any{
		"command_text": "research: cats",
		"session_id":   "sess-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body model.CommandResponse
	decodeBody(t, resp, &body)
	if body.JobID != "job-1" || body.Intent != model.IntentResearch {
		t.Errorf("unexpected response: %+v", body)
	}
	if f.command.LastRequest == nil || f.command.LastRequest.CommandText != "research: cats" {
		t.Error("request did not reach the use case")
	}
}

func TestPostCommandValidation(t *testing.T) {
	f := newServerFixture(t)

	t.Run("missing command_text", func(t *testing.T) {
		resp := f.postJSON(t, "/v1/command", map[string]any{"session_id": "sess-1"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		var body map[string]string
		decodeBody(t, resp, &body)
		if body["detail"] != "command_text is required" {
			t.Errorf("unexpected detail: %q", body["detail"])
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, err := http.Post(f.srv.URL+"/v1/command", "application/json", bytes.NewReader([]byte("{not json")))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestGetJob(t *testing.T) {
	f := newServerFixture(t)
	job := seedJob(t, f.store, "sess-1", model.JobTypeResearch, model.JobStatusRunning)

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/v1/jobs/" + job.ID)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body model.Job
		decodeBody(t, resp, &body)
		if body.ID != job.ID || body.Status != model.JobStatusRunning {
			t.Errorf("unexpected job: %+v", body)
		}
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/v1/jobs/missing")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		var body map[string]string
		decodeBody(t, resp, &body)
		if body["detail"] != "Job not found" {
			t.Errorf("unexpected detail: %q", body["detail"])
		}
	})
}

func TestListJobs(t *testing.T) {
	f := newServerFixture(t)
	seedJob(t, f.store, "sess-a", model.JobTypeResearch, model.JobStatusQueued)
	seedJob(t, f.store, "sess-a", model.JobTypeCreative, model.JobStatusRunning)
	seedJob(t, f.store, "sess-b", model.JobTypeResearch, model.JobStatusSucceeded)

	t.Run("all", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/v1/jobs")
		if err != nil {
			t.Fatal(err)
		}
		var jobs []model.Job
		decodeBody(t, resp, &jobs)
		if len(jobs) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(jobs))
		}
	})

	t.Run("filtered by session and type", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/v1/jobs?session_id=sess-a&type=creative")
		if err != nil {
			t.Fatal(err)
		}
		var jobs []model.Job
		decodeBody(t, resp, &jobs)
		if len(jobs) != 1 || jobs[0].Type != model.JobTypeCreative {
			t.Errorf("unexpected jobs: %+v", jobs)
		}
	})

	t.Run("filtered by status", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/v1/jobs?status=succeeded")
		if err != nil {
			t.Fatal(err)
		}
		var jobs []model.Job
		decodeBody(t, resp, &jobs)
		if len(jobs) != 1 || jobs[0].SessionID != "sess-b" {
			t.Errorf("unexpected jobs: %+v", jobs)
		}
	})
}

func TestCancelJobEndpoint(t *testing.T) {
	f := newServerFixture(t)

	t.Run("running job is cancelled", func(t *testing.T) {
		job := seedJob(t, f.store, "sess-1", model.JobTypeResearch, model.JobStatusRunning)

		resp := f.postJSON(t, "/v1/jobs/"+job.ID+"/cancel", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			JobID   string `json:"job_id"`
		}
		decodeBody(t, resp, &body)
		if !body.Success || body.JobID != job.ID {
			t.Errorf("unexpected reply: %+v", body)
		}

		got, _ := f.store.GetJob(context.Background(), job.ID)
		if got.Status != model.JobStatusCancelled {
			t.Errorf("expected cancelled, got %q", got.Status)
		}
	})

	t.Run("terminal job is a no-op", func(t *testing.T) {
		job := seedJob(t, f.store, "sess-1", model.JobTypeResearch, model.JobStatusSucceeded)

		resp := f.postJSON(t, "/v1/jobs/"+job.ID+"/cancel", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		decodeBody(t, resp, &body)
		if body.Success {
			t.Error("expected success=false for a terminal job")
		}
		if body.Message != "Job already succeeded" {
			t.Errorf("unexpected message: %q", body.Message)
		}
	})

	t.Run("missing job", func(t *testing.T) {
		resp := f.postJSON(t, "/v1/jobs/missing/cancel", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}
