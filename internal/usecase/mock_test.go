// File: internal/usecase/mock_test.go
package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/adapter"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/usecase"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// testPollInterval keeps runner poll loops fast in tests.
const testPollInterval = time.Millisecond

// --- Mock ResearchProvider

type MockResearchProvider struct {
	CreateTaskFunc func(ctx context.Context, query, timezone string) (*adapter.ResearchTask, error)
	GetTaskFunc    func(ctx context.Context, taskID string) (*adapter.ResearchTask, error)

	mu          sync.Mutex
	CreateCalls int
	GetCalls    int
}

var _ adapter.ResearchProvider = (*MockResearchProvider)(nil)

func (m *MockResearchProvider) CreateTask(ctx context.Context, query, timezone string) (*adapter.ResearchTask, error) {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, query, timezone)
	}
	return &adapter.ResearchTask{ID: "task-1", State: adapter.TaskStatePending, RawStatus: "queued"}, nil
}

func (m *MockResearchProvider) GetTask(ctx context.Context, taskID string) (*adapter.ResearchTask, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, taskID)
	}
	return &adapter.ResearchTask{ID: taskID, State: adapter.TaskStatePending, RawStatus: "in_progress"}, nil
}

func (m *MockResearchProvider) PollInterval() time.Duration { return testPollInterval }

func (m *MockResearchProvider) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GetCalls
}

// --- Mock CreativeProvider

type MockCreativeProvider struct {
	GenerateFunc func(ctx context.Context, req adapter.ImageRequest) (*adapter.CreativeTask, error)
	GetTaskFunc  func(ctx context.Context, taskID string) (*adapter.CreativeTask, error)

	mu            sync.Mutex
	GenerateCalls int
	LastRequest   adapter.ImageRequest
}

var _ adapter.CreativeProvider = (*MockCreativeProvider)(nil)

func (m *MockCreativeProvider) Generate(ctx context.Context, req adapter.ImageRequest) (*adapter.CreativeTask, error) {
	m.mu.Lock()
	m.GenerateCalls++
	m.LastRequest = req
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &adapter.CreativeTask{ID: "task-1", State: adapter.TaskStatePending, RawStatus: "CREATED"}, nil
}

func (m *MockCreativeProvider) GetTask(ctx context.Context, taskID string) (*adapter.CreativeTask, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, taskID)
	}
	return &adapter.CreativeTask{ID: taskID, State: adapter.TaskStatePending, RawStatus: "IN_PROGRESS"}, nil
}

func (m *MockCreativeProvider) PollInterval() time.Duration { return testPollInterval }

func (m *MockCreativeProvider) Generates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GenerateCalls
}

// --- Mock Runner

type MockRunner struct {
	JobType     model.JobType
	ExecuteFunc func(ctx context.Context, jobID string, in usecase.RunInput)

	Executed chan string // receives the job id on every Execute call
}

var _ usecase.Runner = (*MockRunner)(nil)

func NewMockRunner(jobType model.JobType) *MockRunner {
	return &MockRunner{JobType: jobType, Executed: make(chan string, 8)}
}

func (m *MockRunner) Type() model.JobType { return m.JobType }

func (m *MockRunner) Execute(ctx context.Context, jobID string, in usecase.RunInput) {
	if m.ExecuteFunc != nil {
		m.ExecuteFunc(ctx, jobID, in)
	}
	m.Executed <- jobID
}

// waitExecuted blocks until the runner has been invoked, or fails the test.
func waitExecuted(t testingT, r *MockRunner) string {
	t.Helper()
	select {
	case id := <-r.Executed:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("runner was never invoked")
		return ""
	}
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// waitForStatus polls the store until the job reaches the wanted status, or
// fails the test after a deadline.
func waitForStatus(t testingT, s repository.Store, jobID string, want model.JobStatus) *model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q", jobID, want)
	return nil
}
