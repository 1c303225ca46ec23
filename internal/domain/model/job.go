package model

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobTypeResearch JobType = "research"
	JobTypeCreative JobType = "creative"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusCancelled
}

type EventLevel string

const (
	EventInfo    EventLevel = "info"
	EventWarning EventLevel = "warning"
	EventError   EventLevel = "error"
)

// maxJobEvents caps the per-job event log so long-polling jobs stay bounded.
const maxJobEvents = 50

// JobEvent is one entry in a job's append-only event log.
type JobEvent struct {
	TS      time.Time      `json:"ts"`
	Level   EventLevel     `json:"level"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// JobInput carries the command that spawned the job plus provider parameters.
type JobInput struct {
	CommandText   string            `json:"command_text"`
	QueryOrPrompt string            `json:"query_or_prompt"`
	Params        map[string]string `json:"params,omitempty"`
	ImagePresent  bool              `json:"image_present"`
}

// JobError is the structured failure payload recorded on a failed job.
type JobError struct {
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// Job is one tracked unit of asynchronous work tied to a command.
type Job struct {
	ID        string         `json:"job_id"`
	SessionID string         `json:"session_id,omitempty"`
	Type      JobType        `json:"type"`
	Status    JobStatus      `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Input     JobInput       `json:"input"`
	Progress  *int           `json:"progress,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     *JobError      `json:"error,omitempty"`
	Events    []JobEvent     `json:"events,omitempty"`

	// Cancelled is the cooperative-cancellation flag. It is set before the
	// status transition; a runner observes it at its poll checkpoints.
	Cancelled bool `json:"cancelled"`
}

func NewJob(sessionID string, jobType JobType, input JobInput) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      jobType,
		Status:    JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		Input:     input,
		Events:    make([]JobEvent, 0, 8),
	}
}

// AddEvent appends to the event log, evicting the oldest entries past the cap.
func (j *Job) AddEvent(level EventLevel, message string, data map[string]any) {
	j.Events = append(j.Events, JobEvent{
		TS:      time.Now(),
		Level:   level,
		Message: message,
		Data:    data,
	})
	if len(j.Events) > maxJobEvents {
		j.Events = append(j.Events[:0], j.Events[len(j.Events)-maxJobEvents:]...)
	}
	j.UpdatedAt = time.Now()
}

// Fail moves the job to failed and records the error both on the job and in
// the event log.
func (j *Job) Fail(message, details string, statusCode int) {
	j.Status = JobStatusFailed
	j.Error = &JobError{Message: message, Details: details, StatusCode: statusCode}
	data := map[string]any{}
	if details != "" {
		data["details"] = details
	}
	if statusCode != 0 {
		data["status_code"] = statusCode
	}
	if len(data) == 0 {
		data = nil
	}
	j.AddEvent(EventError, message, data)
}

// Succeed moves the job to succeeded with the extracted result attached.
func (j *Job) Succeed(result map[string]any) {
	full := 100
	j.Status = JobStatusSucceeded
	j.Progress = &full
	j.Result = result
}

// Clone returns a deep copy so callers never share mutable state with the store.
func (j *Job) Clone() *Job {
	cp := *j
	cp.Events = make([]JobEvent, len(j.Events))
	copy(cp.Events, j.Events)
	if j.Progress != nil {
		p := *j.Progress
		cp.Progress = &p
	}
	if j.Error != nil {
		e := *j.Error
		cp.Error = &e
	}
	if j.Input.Params != nil {
		cp.Input.Params = make(map[string]string, len(j.Input.Params))
		for k, v := range j.Input.Params {
			cp.Input.Params[k] = v
		}
	}
	if j.Result != nil {
		cp.Result = make(map[string]any, len(j.Result))
		for k, v := range j.Result {
			cp.Result[k] = v
		}
	}
	return &cp
}

// Elapsed is the wall time between creation and the last mutation.
func (j *Job) Elapsed() time.Duration {
	return j.UpdatedAt.Sub(j.CreatedAt)
}

// LastEvent returns the most recent event, or nil for an empty log.
func (j *Job) LastEvent() *JobEvent {
	if len(j.Events) == 0 {
		return nil
	}
	ev := j.Events[len(j.Events)-1]
	return &ev
}
