// File: internal/usecase/runner.go
package usecase

import (
	"context"
	"errors"
	"time"

	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/adapter"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/infra/metrics"

	jitterbug "github.com/lthibault/jitterbug/v2"
	"github.com/rs/zerolog"
)

// RunInput carries per-execution data that is not persisted on the job:
// the raw image payload and the resolved provider knobs.
type RunInput struct {
	ImageBase64 string
	Timezone    string
	Imagination string
	AspectRatio string
}

// Runner drives one job's external workflow from running to a terminal state.
// It never returns failure to the caller; every outcome is recorded on the job
// through the store.
type Runner interface {
	Type() model.JobType
	Execute(ctx context.Context, jobID string, in RunInput)
}

// runnerBase holds the store plumbing shared by the concrete runners: the
// running transition, persisted commits that respect external cancellation,
// and the fixed-interval polling loop.
type runnerBase struct {
	store   repository.Store
	maxPoll time.Duration
	log     *zerolog.Logger
}

// begin loads the job and moves it to running with a start event. It returns
// false when there is nothing to run: the job is gone, already terminal, or
// was cancelled while still queued.
func (b *runnerBase) begin(ctx context.Context, jobID, startMsg string) (*model.Job, bool) {
	job, err := b.store.GetJob(ctx, jobID)
	if err != nil {
		b.log.Warn().Err(err).Str("job_id", jobID).Msg("runner: job vanished before start")
		return nil, false
	}
	if job.Status.Terminal() {
		return nil, false
	}
	if job.Cancelled {
		job.Status = model.JobStatusCancelled
		job.AddEvent(model.EventInfo, "Task cancelled before start", nil)
		b.commit(ctx, job)
		return nil, false
	}

	job.Status = model.JobStatusRunning
	job.AddEvent(model.EventInfo, startMsg, nil)
	b.commit(ctx, job)
	return job, true
}

// commit writes the job back and adopts the merged view the store returns, so
// a concurrent cancellation (sticky flag, terminal status) becomes visible to
// the runner at its next checkpoint.
func (b *runnerBase) commit(ctx context.Context, job *model.Job) {
	merged, err := b.store.UpdateJob(ctx, job)
	if err != nil {
		b.log.Error().Err(err).Str("job_id", job.ID).Msg("runner: update failed")
		return
	}
	*job = *merged
}

// fail records a terminal failure and bumps the finished metric. When another
// terminal outcome already landed, the store merge keeps it and the cancel or
// first writer has counted the job; skip the metric then.
func (b *runnerBase) fail(ctx context.Context, job *model.Job, message, details string, statusCode int) {
	job.Fail(message, details, statusCode)
	b.commit(ctx, job)
	if job.Status != model.JobStatusFailed {
		return
	}
	metrics.IncJobFinished(string(job.Type), string(model.JobStatusFailed))
	b.log.Error().Str("job_id", job.ID).Str("type", string(job.Type)).
		Str("error", message).Str("details", details).Msg("job failed")
}

// cancelled finalizes the cooperative-cancellation path. The controller has
// normally written the terminal status already; the store merge keeps it.
func (b *runnerBase) cancelled(ctx context.Context, job *model.Job, msg string) {
	job.Status = model.JobStatusCancelled
	job.AddEvent(model.EventInfo, msg, nil)
	b.commit(ctx, job)
	b.log.Info().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("job cancelled")
}

type loopOutcome int

const (
	loopSucceeded loopOutcome = iota
	loopProviderFailed
	loopPollError
	loopCancelled
	loopCeiling
)

// pollResult is what one poll closure invocation reports back.
type pollResult struct {
	rawStatus string
	done      bool
	failMsg   string // non-empty means the provider reported terminal failure
}

// pollUntilDone repeats poll on a jittered fixed interval. At every loop top
// it re-reads the job's cancellation flag; cancellation and provider-side
// terminal states are the natural exits, with maxPoll as the safety ceiling
// so an unresponsive provider cannot pin a worker forever.
func (b *runnerBase) pollUntilDone(ctx context.Context, job *model.Job, interval time.Duration, poll func(context.Context) (pollResult, error)) (loopOutcome, string, error) {
	ticker := jitterbug.New(interval, &jitterbug.Norm{Stdev: interval / 20})
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return loopCancelled, ctx.Err().Error(), nil
		case <-ticker.C:
		}

		if cur, err := b.store.GetJob(ctx, job.ID); err == nil && cur.Cancelled {
			return loopCancelled, "", nil
		}
		if time.Since(start) > b.maxPoll {
			return loopCeiling, "", nil
		}

		res, err := poll(ctx)
		if err != nil {
			return loopPollError, "", err
		}

		// Record the observed status before acting on it, so the terminal
		// poll's status lands in the event log too.
		job.AddEvent(model.EventInfo, "Polling update: "+res.rawStatus, map[string]any{
			"status":          res.rawStatus,
			"elapsed_seconds": int(time.Since(start).Seconds()),
		})
		b.commit(ctx, job)
		if job.Cancelled {
			return loopCancelled, "", nil
		}

		if res.failMsg != "" {
			return loopProviderFailed, res.failMsg, nil
		}
		if res.done {
			return loopSucceeded, "", nil
		}
	}
}

// providerFailure splits an adapter error into a diagnostic detail and the
// HTTP status code, when one was observed.
func providerFailure(err error) (details string, statusCode int) {
	var perr *adapter.ProviderError
	if errors.As(err, &perr) {
		if perr.Body != "" {
			return perr.Body, perr.StatusCode
		}
		return perr.Error(), perr.StatusCode
	}
	return err.Error(), 0
}
