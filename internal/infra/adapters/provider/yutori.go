// File: internal/infra/adapters/provider/yutori.go
package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sixseven-backend/internal/config"
	"sixseven-backend/internal/domain/ports/adapter"
	"sixseven-backend/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ adapter.ResearchProvider = (*YutoriAdapter)(nil)

// YutoriAdapter drives research tasks against the Yutori API.
type YutoriAdapter struct {
	apiKey   string
	base     string
	interval time.Duration
	client   *http.Client
	log      *zerolog.Logger
}

func NewYutoriAdapter(cfg config.ResearchConfig, log *zerolog.Logger) *YutoriAdapter {
	return &YutoriAdapter{
		apiKey:   cfg.APIKey,
		base:     cfg.BaseURL,
		interval: cfg.PollInterval,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

func (y *YutoriAdapter) PollInterval() time.Duration { return y.interval }

func (y *YutoriAdapter) CreateTask(ctx context.Context, query, timezone string) (*adapter.ResearchTask, error) {
	payload := map[string]any{
		"query":         query,
		"user_timezone": timezone,
		"task_spec": map[string]any{
			"output_schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"answer":    map[string]any{"type": "string"},
					"bullets":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"citations": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"answer", "bullets", "citations"},
			},
		},
	}

	start := time.Now()
	raw, err := doJSON(ctx, y.client, http.MethodPost, y.base, y.headers(), payload, y.log)
	metrics.ObserveProviderCall("yutori", "create_task", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return parseResearch(raw), nil
}

func (y *YutoriAdapter) GetTask(ctx context.Context, taskID string) (*adapter.ResearchTask, error) {
	start := time.Now()
	raw, err := doJSON(ctx, y.client, http.MethodGet, y.base+"/"+taskID, y.headers(), nil, y.log)
	metrics.ObserveProviderCall("yutori", "get_task", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	task := parseResearch(raw)
	if task.ID == "" {
		task.ID = taskID
	}
	return task, nil
}

func (y *YutoriAdapter) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + y.apiKey}
}

// parseResearch maps a Yutori response body onto the port's task shape. The
// scan is best-effort: absent fields become zero values, never errors.
func parseResearch(raw map[string]any) *adapter.ResearchTask {
	task := &adapter.ResearchTask{
		ID:        strField(raw, "id"),
		RawStatus: strings.ToLower(strField(raw, "status")),
	}
	if task.ID == "" {
		task.ID = strField(raw, "task_id")
	}

	output := mapField(raw, "output")

	switch task.RawStatus {
	case "succeeded", "completed", "success":
		task.State = adapter.TaskStateSucceeded
	case "failed", "error":
		task.State = adapter.TaskStateFailed
		task.Message = strField(raw, "error_message")
		if task.Message == "" {
			task.Message = strField(raw, "message")
		}
		if task.Message == "" {
			task.Message = "task failed"
		}
		return task
	case "":
		// No async indicator: a body that already carries output is an
		// immediately-available result.
		if output != nil {
			task.State = adapter.TaskStateSucceeded
		} else {
			task.State = adapter.TaskStatePending
		}
	default:
		task.State = adapter.TaskStatePending
	}

	if task.State == adapter.TaskStateSucceeded {
		task.Answer = adapter.ResearchAnswer{
			Answer:    strField(output, "answer"),
			Bullets:   strSliceField(output, "bullets"),
			Citations: strSliceField(output, "citations"),
		}
		task.ViewURL = strField(raw, "view_url")
		task.Markdown = strField(raw, "markdown")
	}
	return task
}
