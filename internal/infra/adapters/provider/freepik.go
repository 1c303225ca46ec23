// File: internal/infra/adapters/provider/freepik.go
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
var _ adapter.CreativeProvider = (*FreepikAdapter)(nil)

// aspectRatios maps caller-facing ratios to Seedream tokens. Unknown values
// fall back to the square default.
var aspectRatios = map[string]string{
	"original": "square_1_1",
	"1:1":      "square_1_1",
	"16:9":     "widescreen_16_9",
	"9:16":     "social_story_9_16",
	"2:3":      "portrait_2_3",
	"3:4":      "traditional_3_4",
	"3:2":      "standard_3_2",
	"4:3":      "classic_4_3",
	"21:9":     "cinematic_21_9",
}

// FreepikAdapter drives image generation against the Freepik Seedream edit API.
type FreepikAdapter struct {
	apiKey   string
	base     string
	interval time.Duration
	client   *http.Client
	log      *zerolog.Logger
}

func NewFreepikAdapter(cfg config.CreativeConfig, log *zerolog.Logger) *FreepikAdapter {
	return &FreepikAdapter{
		apiKey:   cfg.APIKey,
		base:     cfg.BaseURL,
		interval: cfg.PollInterval,
		// Generation submits can be slow even before going async.
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

func (f *FreepikAdapter) PollInterval() time.Duration { return f.interval }

func (f *FreepikAdapter) Generate(ctx context.Context, req adapter.ImageRequest) (*adapter.CreativeTask, error) {
	ratio, ok := aspectRatios[strings.ToLower(strings.TrimSpace(req.AspectRatio))]
	if !ok {
		ratio = "square_1_1"
	}

	payload := map[string]any{
		"prompt":                req.Prompt,
		"reference_images":      []string{stripDataURI(req.ImageBase64)},
		"aspect_ratio":          ratio,
		"enable_safety_checker": true,
	}

	start := time.Now()
	raw, err := doJSON(ctx, f.client, http.MethodPost, f.base, f.headers(), payload, f.log)
	metrics.ObserveProviderCall("freepik", "generate", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return parseCreative(raw, true), nil
}

func (f *FreepikAdapter) GetTask(ctx context.Context, taskID string) (*adapter.CreativeTask, error) {
	start := time.Now()
	raw, err := doJSON(ctx, f.client, http.MethodGet, f.base+"/"+taskID, f.headers(), nil, f.log)
	metrics.ObserveProviderCall("freepik", "get_task", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	task := parseCreative(raw, false)
	if task.ID == "" {
		task.ID = taskID
	}
	return task, nil
}

func (f *FreepikAdapter) headers() map[string]string {
	return map[string]string{"x-freepik-api-key": f.apiKey}
}

// stripDataURI removes a "data:image/...;base64," prefix when present.
func stripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// parseCreative maps a Seedream response onto the port's task shape. The
// status may sit at the top level or under data; generated URLs likewise.
// On submit an unrecognized status means the result is already available; on
// poll it means keep waiting.
func parseCreative(raw map[string]any, submit bool) *adapter.CreativeTask {
	data := mapField(raw, "data")

	status := strings.ToUpper(strField(raw, "status"))
	if s := strings.ToUpper(strField(data, "status")); s != "" {
		status = s
	}

	task := &adapter.CreativeTask{
		ID:        strField(raw, "task_id"),
		RawStatus: status,
	}
	if task.ID == "" {
		task.ID = strField(data, "task_id")
	}

	switch status {
	case "CREATED", "IN_PROGRESS", "PENDING":
		task.State = adapter.TaskStatePending
		return task
	case "FAILED", "ERROR":
		task.State = adapter.TaskStateFailed
		for _, m := range []string{
			strField(raw, "error_message"),
			strField(raw, "message"),
			strField(data, "error_message"),
			strField(data, "message"),
		} {
			if m != "" {
				task.Message = m
				break
			}
		}
		if task.Message == "" {
			task.Message = "task failed"
		}
		return task
	case "COMPLETED", "SUCCEEDED", "SUCCESS":
		task.State = adapter.TaskStateSucceeded
	default:
		if submit {
			task.State = adapter.TaskStateSucceeded
		} else {
			task.State = adapter.TaskStatePending
			return task
		}
	}

	task.Generated = append(strSliceField(data, "generated"), strSliceField(raw, "generated")...)
	return task
}
