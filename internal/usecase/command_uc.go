// File: internal/usecase/command_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sixseven-backend/internal/domain"
	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/infra/logging"
	"sixseven-backend/internal/infra/metrics"
	"sixseven-backend/internal/infra/worker"
)

// Compile-time check
var _ CommandUseCase = (*commandUC)(nil)

const unknownCommandMessage = "I didn't understand that command. Try 'research', 'imagine', 'status', or 'stop'."

type CommandUseCase interface {
	// HandleCommand classifies the command, creates and schedules a job for
	// task intents, and returns immediately; it never waits on a runner.
	HandleCommand(ctx context.Context, req *model.CommandRequest) *model.CommandResponse
}

// commandUC is the orchestrator: it owns intent routing, session upkeep, job
// creation and the hand-off to the worker pool.
type commandUC struct {
	store    repository.Store
	pool     *worker.Pool
	runners  map[model.JobType]Runner
	statusUC StatusUseCase
	cancelUC CancelUseCase
	defaults model.Defaults
	log      *zerolog.Logger
}

func NewCommandUseCase(
	store repository.Store,
	pool *worker.Pool,
	statusUC StatusUseCase,
	cancelUC CancelUseCase,
	defaults model.Defaults,
	log *zerolog.Logger,
	runners ...Runner,
) *commandUC {
	byType := make(map[model.JobType]Runner, len(runners))
	for _, r := range runners {
		byType[r.Type()] = r
	}
	return &commandUC{
		store:    store,
		pool:     pool,
		runners:  byType,
		statusUC: statusUC,
		cancelUC: cancelUC,
		defaults: defaults,
		log:      log,
	}
}

func (c *commandUC) HandleCommand(ctx context.Context, req *model.CommandRequest) *model.CommandResponse {
	defer logging.TraceDuration(c.log, "commandUC.HandleCommand")()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	intent, arg := parseIntent(req.CommandText)
	logging.With(ctx, c.log).Info().Str("intent", string(intent)).Str("session_id", sessionID).
		Bool("has_arg", arg != "").Msg("intent parsed")

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.log.Error().Err(err).Str("session_id", sessionID).Msg("session lookup failed")
		}
		session = model.NewSession(sessionID)
	}
	session.LastCommandText = req.CommandText
	session.LastIntent = intent
	session, _ = c.store.UpdateSession(ctx, session)

	switch intent {
	case model.IntentResearch, model.IntentCreative:
		return c.handleTask(ctx, session, intent, arg, req)
	case model.IntentStatus:
		report := c.statusUC.GetStatus(ctx, sessionID)
		return &model.CommandResponse{
			Intent:    intent,
			Message:   report.Message,
			SessionID: sessionID,
			ActiveJob: report.ActiveJob,
		}
	case model.IntentStop:
		jobID, ok := c.cancelUC.Cancel(ctx, sessionID)
		message := "No active task to cancel."
		if ok {
			message = "Task cancelled."
		}
		return &model.CommandResponse{
			Intent:         intent,
			Message:        message,
			SessionID:      sessionID,
			CancelledJobID: jobID,
		}
	}

	return &model.CommandResponse{
		Intent:    model.IntentUnknown,
		Message:   unknownCommandMessage,
		SessionID: sessionID,
	}
}

func (c *commandUC) handleTask(ctx context.Context, session *model.Session, intent model.Intent, arg string, req *model.CommandRequest) *model.CommandResponse {
	reply := func(message string) *model.CommandResponse {
		return &model.CommandResponse{Intent: intent, Message: message, SessionID: session.ID}
	}

	jobType := model.JobTypeResearch
	if intent == model.IntentCreative {
		jobType = model.JobTypeCreative
	}

	// Input validation is synchronous: no job is created for unusable input.
	if arg == "" {
		if jobType == model.JobTypeCreative {
			return reply("Please provide an image prompt.")
		}
		return reply("Please provide a research query.")
	}
	if jobType == model.JobTypeCreative && req.ImageBase64 == "" {
		return reply("Please provide an image for creative tasks.")
	}

	in := c.resolveDefaults(req.Defaults)
	in.ImageBase64 = req.ImageBase64

	job := model.NewJob(session.ID, jobType, model.JobInput{
		CommandText:   req.CommandText,
		QueryOrPrompt: arg,
		Params:        jobParams(jobType, in),
		ImagePresent:  req.ImageBase64 != "",
	})
	if _, err := c.store.CreateJob(ctx, job); err != nil {
		c.log.Error().Err(err).Str("job_id", job.ID).Msg("job create failed")
		return reply("Something went wrong creating the task.")
	}
	metrics.IncJobCreated(string(jobType))

	session.ActiveJobID = job.ID
	if _, err := c.store.UpdateSession(ctx, session); err != nil {
		c.log.Error().Err(err).Str("session_id", session.ID).Msg("session update failed")
	}

	c.schedule(job, in)

	message := fmt.Sprintf("Starting research on: %s...", clip(arg, 50))
	if jobType == model.JobTypeCreative {
		message = fmt.Sprintf("Generating image: %s...", clip(arg, 50))
	}
	return &model.CommandResponse{
		Intent:    intent,
		Message:   message,
		SessionID: session.ID,
		JobID:     job.ID,
		Status:    model.JobStatusQueued,
	}
}

// schedule hands the job to the worker pool. This is the boundary nothing may
// escape: a saturated queue or a panicking runner still lands the job in a
// terminal failed state.
func (c *commandUC) schedule(job *model.Job, in RunInput) {
	runner, ok := c.runners[job.Type]
	if !ok {
		c.failScheduled(job.ID, job.Type, "no runner registered for job type "+string(job.Type))
		return
	}

	task := func(ctx context.Context) error {
		ctx = logging.WithJobID(ctx, job.ID)
		defer func() {
			if r := recover(); r != nil {
				logging.With(ctx, c.log).Error().Any("panic", r).Msg("runner panicked")
				c.failScheduled(job.ID, job.Type, fmt.Sprintf("unexpected error: %v", r))
			}
		}()
		runner.Execute(ctx, job.ID, in)
		return nil
	}

	if err := c.pool.Submit(task); err != nil {
		c.log.Error().Err(err).Str("job_id", job.ID).Msg("could not schedule job")
		c.failScheduled(job.ID, job.Type, err.Error())
	}
}

// failScheduled marks a job failed from outside a runner. It uses a background
// context: the originating request is usually gone by now.
func (c *commandUC) failScheduled(jobID string, jobType model.JobType, message string) {
	ctx := context.Background()
	job, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		return
	}
	if job.Status.Terminal() {
		return
	}
	job.Fail(message, "", 0)
	merged, err := c.store.UpdateJob(ctx, job)
	if err != nil {
		c.log.Error().Err(err).Str("job_id", jobID).Msg("scheduled-failure update failed")
		return
	}
	if merged.Status != model.JobStatusFailed {
		return
	}
	metrics.IncJobFinished(string(jobType), string(model.JobStatusFailed))
}

func (c *commandUC) resolveDefaults(d model.Defaults) RunInput {
	in := RunInput{
		Timezone:    d.Timezone,
		Imagination: d.Imagination,
		AspectRatio: d.AspectRatio,
	}
	if in.Timezone == "" {
		in.Timezone = c.defaults.Timezone
	}
	if in.Imagination == "" {
		in.Imagination = c.defaults.Imagination
	}
	if in.AspectRatio == "" {
		in.AspectRatio = c.defaults.AspectRatio
	}
	return in
}

func jobParams(jobType model.JobType, in RunInput) map[string]string {
	if jobType == model.JobTypeCreative {
		return map[string]string{
			"imagination":  in.Imagination,
			"aspect_ratio": in.AspectRatio,
		}
	}
	return map[string]string{"timezone": in.Timezone}
}

// clip truncates to n runes so multi-byte input never tears mid-character.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
