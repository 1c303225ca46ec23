package adapter

import (
	"context"
	"fmt"
	"time"
)

// TaskState is the provider-agnostic view of an external task's status.
type TaskState string

const (
	// TaskStatePending covers queued/created/in-progress provider statuses.
	TaskStatePending TaskState = "pending"
	// TaskStateSucceeded means a final result payload is available.
	TaskStateSucceeded TaskState = "succeeded"
	// TaskStateFailed means the provider reported a terminal failure.
	TaskStateFailed TaskState = "failed"
)

// ProviderError is returned once an HTTP call's retry budget is exhausted.
// StatusCode is 0 for pure transport failures.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider request failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ResearchAnswer is the structured output extracted from a research task.
// Missing provider fields yield zero values, never an error.
type ResearchAnswer struct {
	Answer    string
	Bullets   []string
	Citations []string
}

// ResearchTask is the state of one research task as last reported.
type ResearchTask struct {
	ID        string
	State     TaskState
	RawStatus string
	Answer    ResearchAnswer
	ViewURL   string
	Markdown  string
	// Message carries the provider failure detail when State is failed.
	Message string
}

// CreativeTask is the state of one image-generation task as last reported.
type CreativeTask struct {
	ID        string
	State     TaskState
	RawStatus string
	Generated []string
	Message   string
}

// ImageRequest is the input for an image-edit generation.
type ImageRequest struct {
	Prompt      string
	ImageBase64 string
	Imagination string
	AspectRatio string
}

// ResearchProvider drives the external research workflow.
type ResearchProvider interface {
	CreateTask(ctx context.Context, query, timezone string) (*ResearchTask, error)
	GetTask(ctx context.Context, taskID string) (*ResearchTask, error)
	PollInterval() time.Duration
}

// CreativeProvider drives the external image-generation workflow.
type CreativeProvider interface {
	Generate(ctx context.Context, req ImageRequest) (*CreativeTask, error)
	GetTask(ctx context.Context, taskID string) (*CreativeTask, error)
	PollInterval() time.Duration
}
