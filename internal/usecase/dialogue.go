// File: internal/usecase/dialogue.go
package usecase

import (
	"fmt"
	"strings"

	"sixseven-backend/internal/domain/model"
)

// The dialogue formatter turns job state into a short speakable string plus a
// structured payload. Pure functions, no state.

// SpeakableResult pairs the voice-friendly summary with the typed payload the
// caller can render.
type SpeakableResult struct {
	Speakable  string         `json:"speakable"`
	Structured map[string]any `json:"structured,omitempty"`
}

// FormatResult summarizes a completed job's result by type. Jobs without a
// result yet get a fixed in-progress message.
func FormatResult(job *model.Job) SpeakableResult {
	if job.Result == nil {
		return SpeakableResult{
			Speakable: fmt.Sprintf("%s task is still in progress.", titleCase(string(job.Type))),
		}
	}
	if job.Type == model.JobTypeCreative {
		return formatCreativeResult(job.Result)
	}
	return formatResearchResult(job.Result)
}

func formatResearchResult(result map[string]any) SpeakableResult {
	structured := resultMap(result, "structured_result")
	answer := resultString(structured, "answer")
	bullets := resultStrings(structured, "bullets")

	var parts []string
	if answer != "" {
		sentences := strings.SplitN(answer, ". ", 3)
		summary := strings.Join(sentences[:min(len(sentences), 2)], ". ")
		if len(sentences) > 2 && !strings.HasSuffix(summary, ".") {
			summary += "."
		}
		parts = append(parts, summary)
	}
	if len(bullets) > 0 {
		parts = append(parts, "Key points:")
		for _, b := range bullets[:min(len(bullets), 3)] {
			parts = append(parts, "- "+b)
		}
	}
	speakable := strings.Join(parts, " ")
	if speakable == "" {
		speakable = "Research completed."
	}

	return SpeakableResult{
		Speakable: speakable,
		Structured: map[string]any{
			"answer":    answer,
			"bullets":   bullets,
			"citations": resultStrings(structured, "citations"),
			"view_url":  resultString(result, "view_url"),
			"task_id":   resultString(result, "task_id"),
		},
	}
}

func formatCreativeResult(result map[string]any) SpeakableResult {
	urls := resultStrings(result, "generated_urls")

	speakable := "Creative task completed. Check the response for details."
	if n := len(urls); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		speakable = fmt.Sprintf("Generated %d image%s. Check your screen.", n, plural)
	}

	return SpeakableResult{
		Speakable: speakable,
		Structured: map[string]any{
			"generated_urls": urls,
			"task_id":        resultString(result, "task_id"),
			"status":         resultString(result, "status"),
		},
	}
}

// FormatStatusMessage renders the speakable status line for an active job, or
// the no-active-tasks message for nil.
func FormatStatusMessage(job *model.Job) string {
	if job == nil {
		return "No active tasks."
	}

	switch job.Status {
	case model.JobStatusRunning:
		return fmt.Sprintf("Your %s task is running. Elapsed time: %d seconds.", job.Type, int(job.Elapsed().Seconds()))
	case model.JobStatusQueued:
		return fmt.Sprintf("Your %s task is queued.", job.Type)
	case model.JobStatusSucceeded:
		return fmt.Sprintf("Your %s task completed successfully.", job.Type)
	case model.JobStatusFailed:
		return fmt.Sprintf("Your %s task failed.", job.Type)
	case model.JobStatusCancelled:
		return fmt.Sprintf("Your %s task was cancelled.", job.Type)
	}
	return fmt.Sprintf("Your %s task status is %s.", job.Type, job.Status)
}

// FormatError renders the speakable failure line for a job.
func FormatError(job *model.Job) string {
	if job.Error == nil {
		return "An unknown error occurred."
	}
	return "Task failed: " + job.Error.Message
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Loose accessors for the opaque result payload.

func resultMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func resultString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func resultStrings(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
