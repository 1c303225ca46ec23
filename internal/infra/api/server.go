// File: internal/infra/api/server.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sixseven-backend/internal/domain"
	"sixseven-backend/internal/domain/model"
	"sixseven-backend/internal/domain/ports/repository"
	"sixseven-backend/internal/infra/logging"
	"sixseven-backend/internal/usecase"
)

// Server exposes the command/job API over HTTP. It is a thin layer: request
// decoding and status codes here, everything else in the use cases.
type Server struct {
	commandUC usecase.CommandUseCase
	cancelUC  usecase.CancelUseCase
	store     repository.Store
	log       *zerolog.Logger
}

func NewServer(commandUC usecase.CommandUseCase, cancelUC usecase.CancelUseCase, store repository.Store, log *zerolog.Logger) *Server {
	return &Server{commandUC: commandUC, cancelUC: cancelUC, store: store, log: log}
}

// Router builds the chi mux with all routes attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]bool{"ok": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/command", s.handleCommand)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Post("/jobs/{id}/cancel", s.handleCancelJob)
	})
	return r
}

// requestID stamps each request with an id so log lines across the command
// pipeline can be correlated.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, req.WithContext(logging.WithRequestID(req.Context(), id)))
	})
}

func (s *Server) handleCommand(w http.ResponseWriter, req *http.Request) {
	var cmd model.CommandRequest
	if err := render.DecodeJSON(req.Body, &cmd); err != nil {
		s.renderError(w, req, http.StatusBadRequest, "invalid request body")
		return
	}
	if cmd.CommandText == "" {
		s.renderError(w, req, http.StatusBadRequest, "command_text is required")
		return
	}

	ctx := req.Context()
	if cmd.SessionID != "" {
		ctx = logging.WithSessID(ctx, cmd.SessionID)
	}
	logging.With(ctx, s.log).Info().Str("command", clip(cmd.CommandText, 100)).Msg("command received")
	resp := s.commandUC.HandleCommand(ctx, &cmd)
	render.JSON(w, req, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, req *http.Request) {
	job, err := s.store.GetJob(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.renderError(w, req, http.StatusNotFound, "Job not found")
			return
		}
		s.renderError(w, req, http.StatusInternalServerError, "Failed to get job")
		return
	}
	render.JSON(w, req, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	jobs, err := s.store.ListJobs(req.Context(), repository.JobFilter{
		SessionID: q.Get("session_id"),
		Type:      model.JobType(q.Get("type")),
		Status:    model.JobStatus(q.Get("status")),
		Limit:     limit,
	})
	if err != nil {
		s.renderError(w, req, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	render.JSON(w, req, jobs)
}

type cancelReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
}

func (s *Server) handleCancelJob(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	job, err := s.store.GetJob(req.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.renderError(w, req, http.StatusNotFound, "Job not found")
			return
		}
		s.renderError(w, req, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job.Status.Terminal() {
		render.JSON(w, req, cancelReply{Success: false, Message: "Job already " + string(job.Status)})
		return
	}

	ok, err := s.cancelUC.CancelJob(req.Context(), id)
	if errors.Is(err, domain.ErrJobTerminal) {
		cur, getErr := s.store.GetJob(req.Context(), id)
		if getErr == nil {
			render.JSON(w, req, cancelReply{Success: false, Message: "Job already " + string(cur.Status)})
			return
		}
	}
	if err != nil || !ok {
		render.JSON(w, req, cancelReply{Success: false, Message: "Job could not be cancelled"})
		return
	}
	render.JSON(w, req, cancelReply{Success: true, Message: "Job cancelled", JobID: id})
}

func (s *Server) renderError(w http.ResponseWriter, req *http.Request, code int, msg string) {
	render.Status(req, code)
	render.JSON(w, req, map[string]string{"detail": msg})
}

// clip truncates to n runes so multi-byte input never tears mid-character.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
