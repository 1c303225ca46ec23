// File: internal/usecase/research_runner.go
package usecase

import (
	"context"
	"time"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/adapter"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ Runner = (*researchRunner)(nil)

// researchRunner executes research jobs: submit the query, poll until the
// provider settles, extract the structured answer.
type researchRunner struct {
	runnerBase
	provider adapter.ResearchProvider
}

func NewResearchRunner(store repository.Store, provider adapter.ResearchProvider, maxPoll time.Duration, log *zerolog.Logger) *researchRunner {
	return &researchRunner{
		runnerBase: runnerBase{store: store, maxPoll: maxPoll, log: log},
		provider:   provider,
	}
}

func (r *researchRunner) Type() model.JobType { return model.JobTypeResearch }

func (r *researchRunner) Execute(ctx context.Context, jobID string, in RunInput) {
	job, ok := r.begin(ctx, jobID, "Research task started")
	if !ok {
		return
	}

	task, err := r.provider.CreateTask(ctx, job.Input.QueryOrPrompt, in.Timezone)
	if err != nil {
		details, code := providerFailure(err)
		r.fail(ctx, job, "Failed to create research task", details, code)
		return
	}

	switch task.State {
	case adapter.TaskStateFailed:
		r.fail(ctx, job, "Research task failed", task.Message, 0)
		return
	case adapter.TaskStateSucceeded:
		// Immediate result, no polling needed.
		r.finish(ctx, job, task)
		return
	}

	job.AddEvent(model.EventInfo, "Research task created: "+task.ID, map[string]any{"task_id": task.ID})
	r.commit(ctx, job)
	if job.Cancelled {
		r.cancelled(ctx, job, "Research task cancelled")
		return
	}

	var last *adapter.ResearchTask
	outcome, detail, pollErr := r.pollUntilDone(ctx, job, r.provider.PollInterval(), func(ctx context.Context) (pollResult, error) {
		polled, err := r.provider.GetTask(ctx, task.ID)
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
		r.cancelled(ctx, job, "Research task cancelled")
	case loopPollError:
		details, code := providerFailure(pollErr)
		r.fail(ctx, job, "Research task failed", details, code)
	case loopProviderFailed:
		r.fail(ctx, job, "Research task failed", detail, 0)
	case loopCeiling:
		r.fail(ctx, job, "Research task timed out", "no terminal status within "+r.maxPoll.String(), 0)
	case loopSucceeded:
		r.finish(ctx, job, last)
	}
}

func (r *researchRunner) finish(ctx context.Context, job *model.Job, task *adapter.ResearchTask) {
	job.Succeed(map[string]any{
		"task_id":  task.ID,
		"view_url": task.ViewURL,
		"structured_result": map[string]any{
			"answer":    task.Answer.Answer,
			"bullets":   task.Answer.Bullets,
			"citations": task.Answer.Citations,
		},
		"markdown_result": task.Markdown,
	})
	job.AddEvent(model.EventInfo, "Research task succeeded", nil)
	r.commit(ctx, job)
	if job.Status != model.JobStatusSucceeded {
		// A cancellation landed first; the merge kept it and its count.
		return
	}
	metrics.IncJobFinished(string(job.Type), string(model.JobStatusSucceeded))
	r.log.Info().Str("job_id", job.ID).Str("task_id", task.ID).Msg("research job succeeded")
}
