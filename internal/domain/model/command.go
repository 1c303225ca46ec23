package model

type Intent string

const (
	IntentResearch Intent = "research"
	IntentCreative Intent = "creative"
	IntentStatus   Intent = "status"
	IntentStop     Intent = "stop"
	IntentUnknown  Intent = "unknown"
)

// Defaults is the per-request option bag for provider-specific knobs.
// Zero values fall back to the configured server defaults.
type Defaults struct {
	Timezone    string `json:"timezone,omitempty"`
	Imagination string `json:"imagination,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// CommandRequest is one incoming voice/text command.
type CommandRequest struct {
	CommandText string   `json:"command_text"`
	ImageBase64 string   `json:"image_base64,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Defaults    Defaults `json:"defaults"`
}

// CommandResponse is the synchronous reply; task intents return immediately
// with the queued job id while the runner executes in the background.
type CommandResponse struct {
	Intent         Intent      `json:"intent"`
	Message        string      `json:"message"`
	SessionID      string      `json:"session_id"`
	JobID          string      `json:"job_id,omitempty"`
	Status         JobStatus   `json:"status,omitempty"`
	ActiveJob      *JobSummary `json:"active_job,omitempty"`
	CancelledJobID string      `json:"cancelled_job_id,omitempty"`
}

// JobSummary is the compact job view returned by status queries.
type JobSummary struct {
	JobID          string    `json:"job_id"`
	Type           JobType   `json:"type"`
	Status         JobStatus `json:"status"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	LastEvent      *JobEvent `json:"last_event,omitempty"`
}
