package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/model"
)

// APIPrefix is where the demo mounts the audit API.
const APIPrefix = "/api/v1"

type demoJob struct {
	id          string
	url         string
	includePerf bool
	polls       int
	status      model.JobStatus
	payload     *model.RawPayload
	errMsg      string
	completedAt time.Time
}

// Server is an in-process stand-in for the remote audit API. Jobs advance
// pending -> running -> completed as they are polled; URLs containing "fail"
// end as failed.
type Server struct {
	cfg    Config
	router chi.Router
	logger logging.Logger

	mu   sync.Mutex
	jobs map[string]*demoJob
}

// NewServer creates a demo server instance.
func NewServer(cfg Config, logger logging.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.PendingPolls < 0 {
		cfg.PendingPolls = 0
	}
	if cfg.RunningPolls < 0 {
		cfg.RunningPolls = 0
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger.With(logging.Field{Key: "component", Value: "demo"}),
		jobs:   make(map[string]*demoJob),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/audit", s.handleSubmit)
		r.Get("/audit/{jobID}", s.handleStatus)
		r.Get("/audit/{jobID}/pdf", s.handlePDF)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("demo audit api listening", logging.Field{Key: "addr", Value: s.cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("demo server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req model.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	target := strings.TrimSpace(req.URL)
	if target == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	job := &demoJob{
		id:          uuid.NewString(),
		url:         target,
		includePerf: req.IncludePerformance,
		status:      model.JobPending,
	}
	s.mu.Lock()
	s.jobs[job.id] = job
	s.mu.Unlock()

	s.logger.Info("started demo audit", logging.Field{Key: "job_id", Value: job.id}, logging.Field{Key: "url", Value: target})
	writeJSON(w, http.StatusOK, model.SubmitResponse{JobID: job.id, Status: model.JobPending, URL: target})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Audit not found")
		return
	}
	s.advance(job)
	resp := s.snapshot(job)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// advance moves job one step along its lifecycle. Callers hold s.mu.
func (s *Server) advance(job *demoJob) {
	if job.status.Terminal() {
		return
	}
	job.polls++
	switch {
	case job.polls <= s.cfg.PendingPolls:
		job.status = model.JobPending
	case job.polls <= s.cfg.PendingPolls+s.cfg.RunningPolls:
		job.status = model.JobRunning
	case strings.Contains(strings.ToLower(job.url), "fail"):
		job.status = model.JobFailed
		job.errMsg = fmt.Sprintf("Failed to fetch %s: connection reset", job.url)
		s.logger.Info("demo audit failed", logging.Field{Key: "job_id", Value: job.id})
	default:
		job.status = model.JobCompleted
		job.payload = GenerateResult(job.id, job.url, s.cfg.Seed)
		if !job.includePerf && job.payload.Confidence != nil && !slices.Contains(job.payload.Confidence.Missing, "performance") {
			job.payload.Confidence.Missing = append(job.payload.Confidence.Missing, "performance")
		}
		job.completedAt = time.Now().UTC()
		s.logger.Info("demo audit completed", logging.Field{Key: "job_id", Value: job.id})
	}
}

// snapshot renders the wire view of job. Callers hold s.mu.
func (s *Server) snapshot(job *demoJob) *model.RawPayload {
	if job.status == model.JobCompleted && job.payload != nil {
		p := *job.payload
		return &p
	}
	p := &model.RawPayload{
		JobID:    job.id,
		Status:   job.status,
		URL:      job.url,
		FinalURL: job.url,
	}
	if job.status == model.JobFailed {
		msg := job.errMsg
		p.Error = &msg
	}
	return p
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	s.mu.Lock()
	job, ok := s.jobs[jobID]
	var payload *model.RawPayload
	var completedAt time.Time
	if ok && job.status == model.JobCompleted {
		payload, completedAt = job.payload, job.completedAt
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Audit not found")
		return
	}
	if payload == nil {
		writeDetail(w, http.StatusBadRequest, "Audit not completed yet")
		return
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, payload, completedAt); err != nil {
		s.logger.Error("rendering pdf", logging.Field{Key: "job_id", Value: jobID}, logging.Field{Key: "error", Value: err.Error()})
		writeDetail(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=audit_%s.pdf", shortID(jobID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
