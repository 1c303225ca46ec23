// File: internal/usecase/creative_runner.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/adapter"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ Runner = (*creativeRunner)(nil)

// minImageBase64Len rejects implausibly small payloads before the provider is
// touched. A real 512x512 JPEG is well past this in base64.
const minImageBase64Len = 10000

// creativeRunner executes image-generation jobs: validate the reference image,
// submit the edit, poll until the provider settles, collect the output URLs.
type creativeRunner struct {
	runnerBase
	provider adapter.CreativeProvider
}

func NewCreativeRunner(store repository.Store, provider adapter.CreativeProvider, maxPoll time.Duration, log *zerolog.Logger) *creativeRunner {
	return &creativeRunner{
		runnerBase: runnerBase{store: store, maxPoll: maxPoll, log: log},
		provider:   provider,
	}
}

func (c *creativeRunner) Type() model.JobType { return model.JobTypeCreative }

func (c *creativeRunner) Execute(ctx context.Context, jobID string, in RunInput) {
	job, ok := c.begin(ctx, jobID, "Creative task started")
	if !ok {
		return
	}

	if in.ImageBase64 == "" {
		c.fail(ctx, job, "No image provided for creative task", "", 0)
		return
	}
	if len(in.ImageBase64) < minImageBase64Len {
		c.fail(ctx, job, "Image too small or invalid",
			fmt.Sprintf("image base64 length %d, minimum %d; provide a real image of at least 512x512 pixels",
				len(in.ImageBase64), minImageBase64Len), 0)
		return
	}

	task, err := c.provider.Generate(ctx, adapter.ImageRequest{
		Prompt:      job.Input.QueryOrPrompt,
		ImageBase64: in.ImageBase64,
		Imagination: in.Imagination,
		AspectRatio: in.AspectRatio,
	})
	if err != nil {
		details, code := providerFailure(err)
		c.fail(ctx, job, "Failed to generate image", details, code)
		return
	}

	switch task.State {
	case adapter.TaskStateFailed:
		c.fail(ctx, job, "Image generation failed", task.Message, 0)
		return
	case adapter.TaskStateSucceeded:
		// Synchronous response, nothing to poll.
		c.finish(ctx, job, task)
		return
	}

	job.AddEvent(model.EventInfo, "Creative task async: "+task.RawStatus, map[string]any{
		"status":  task.RawStatus,
		"task_id": task.ID,
	})
	c.commit(ctx, job)
	if job.Cancelled {
		c.cancelled(ctx, job, "Creative task cancelled")
		return
	}

	var last *adapter.CreativeTask
	outcome, detail, pollErr := c.pollUntilDone(ctx, job, c.provider.PollInterval(), func(ctx context.Context) (pollResult, error) {
		polled, err := c.provider.GetTask(ctx, task.ID)
		if err != nil {
			return pollResult{}, err
		}
		last = polled
		res := pollResult{rawStatus: polled.RawStatus}
		switch polled.State {
		case adapter.TaskStateSucceeded:
			res.done = true
		case adapter.TaskStateFailed:
			res.failMsg = polled.Message
		}
		return res, nil
	})

	switch outcome {
	case loopCancelled:
		c.cancelled(ctx, job, "Creative task cancelled")
	case loopPollError:
		details, code := providerFailure(pollErr)
		c.fail(ctx, job, "Creative task failed during polling", details, code)
	case loopProviderFailed:
		c.fail(ctx, job, "Creative task failed", detail, 0)
	case loopCeiling:
		c.fail(ctx, job, "Creative task timed out", "no terminal status within "+c.maxPoll.String(), 0)
	case loopSucceeded:
		c.finish(ctx, job, last)
	}
}

func (c *creativeRunner) finish(ctx context.Context, job *model.Job, task *adapter.CreativeTask) {
	status := task.RawStatus
	if status == "" {
		status = "COMPLETED"
	}
	job.Succeed(map[string]any{
		"task_id":        task.ID,
		"status":         status,
		"generated_urls": task.Generated,
	})
	job.AddEvent(model.EventInfo, "Creative task succeeded", map[string]any{"url_count": len(task.Generated)})
	c.commit(ctx, job)
	if job.Status != model.JobStatusSucceeded {
		// A cancellation landed first; the merge kept it and its count.
		return
	}
	metrics.IncJobFinished(string(job.Type), string(model.JobStatusSucceeded))
	c.log.Info().Str("job_id", job.ID).Str("task_id", task.ID).
		Int("url_count", len(task.Generated)).Msg("creative job succeeded")
}
