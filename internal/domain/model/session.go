package model

import "time"

// Session is per-conversation context: the most recent command and the job
// currently considered active. It is not a queue; the last created job wins.
type Session struct {
	ID              string    `json:"session_id"`
	ActiveJobID     string    `json:"active_job_id,omitempty"`
	LastCommandText string    `json:"last_command_text,omitempty"`
	LastIntent      Intent    `json:"last_intent,omitempty"`
	LastUpdatedAt   time.Time `json:"last_updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, LastUpdatedAt: time.Now()}
}
