package auditclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/model"
)

// PollConfig bounds how a job is polled.
type PollConfig struct {
	// Interval between two status fetches.
	Interval time.Duration `yaml:"interval"`

	// MaxAttempts caps the number of status fetches; 0 selects the default.
	MaxAttempts int `yaml:"max_attempts"`

	// MaxDuration caps the wall time of a poll; 0 selects the default.
	MaxDuration time.Duration `yaml:"max_duration"`

	// RequestTimeout bounds a single status fetch; 0 selects the default.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultPollConfig polls every 2s for at most 10 minutes.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:       2 * time.Second,
		MaxAttempts:    300,
		MaxDuration:    10 * time.Minute,
		RequestTimeout: 15 * time.Second,
	}
}

func (c PollConfig) withDefaults() PollConfig {
	def := DefaultPollConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = def.MaxDuration
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	return c
}

// TerminalFunc receives the outcome of a poll: a result when the job
// completed, otherwise an error (*JobFailure, *PollTimeout or
// ErrPollCanceled). It is called exactly once per poll, outside any lock.
type TerminalFunc func(result *model.AuditResult, err error)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventResult JobEventType = "result"
	JobEventError  JobEventType = "error"
)

// JobEvent describes one observation made while polling.
type JobEvent struct {
	JobID   string          `json:"job_id"`
	Type    JobEventType    `json:"type"`
	Status  model.JobStatus `json:"status,omitempty"`
	Attempt int             `json:"attempt,omitempty"`
	Error   string          `json:"error,omitempty"`
	Time    time.Time       `json:"time"`
}

// PollHandle controls one running poll.
type PollHandle struct {
	jobID  string
	cancel context.CancelFunc
	done   chan struct{}
	events chan JobEvent

	mu     sync.Mutex
	result *model.AuditResult
	err    error
}

func newPollHandle(jobID string, cancel context.CancelFunc) *PollHandle {
	return &PollHandle{
		jobID:  jobID,
		cancel: cancel,
		done:   make(chan struct{}),
		events: make(chan JobEvent, 16),
	}
}

// JobID is the job being polled.
func (h *PollHandle) JobID() string { return h.jobID }

// Cancel stops the poll. The in-flight fetch, if any, is abandoned through
// its context and the terminal callback receives ErrPollCanceled.
func (h *PollHandle) Cancel() { h.cancel() }

// Done is closed once the poll has reached a terminal state and the
// terminal callback has returned.
func (h *PollHandle) Done() <-chan struct{} { return h.done }

// Events streams observations. The channel is closed when the poll ends;
// events are dropped when nobody keeps up.
func (h *PollHandle) Events() <-chan JobEvent { return h.events }

// Wait blocks until the poll ends and returns its outcome.
func (h *PollHandle) Wait() (*model.AuditResult, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result.Clone(), h.err
}

func (h *PollHandle) emit(ev JobEvent) {
	ev.JobID = h.jobID
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	// Non-blocking send; drop if buffer is full.
	select {
	case h.events <- ev:
	default:
	}
}

// Session owns the audit state of one caller: at most one active poll, the
// job it tracks and the last result received. It replaces process-wide
// state; create one per user or per console.
type Session struct {
	client Client
	cfg    PollConfig
	logger logging.Logger

	mu       sync.Mutex
	active   *PollHandle
	starting bool
	job      *model.AuditJob
	last     *model.AuditResult
	closed   bool
}

// NewSession wraps client. Zero fields of cfg take their defaults.
func NewSession(client Client, cfg PollConfig, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{
		client: client,
		cfg:    cfg.withDefaults(),
		logger: logger.With(logging.Field{Key: "component", Value: "session"}),
	}
}

// Client returns the underlying API client.
func (s *Session) Client() Client { return s.client }

// Start submits req and begins polling the created job. It fails fast with
// ErrJobActive while another poll is running. ctx bounds both the submission
// and the whole poll, so callers usually pass a long-lived context rather
// than a request scoped one.
func (s *Session) Start(ctx context.Context, req *model.AuditRequest, onTerminal TerminalFunc) (*PollHandle, error) {
	if err := s.reserve(); err != nil {
		return nil, err
	}

	job, err := s.client.Submit(ctx, req)
	if err != nil {
		s.release()
		s.logger.Warn("audit submission failed", logging.Field{Key: "error", Value: err.Error()})
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.pollLocked(ctx, job, onTerminal), nil
}

// Replace cancels the active poll, if any, and starts a new audit.
func (s *Session) Replace(ctx context.Context, req *model.AuditRequest, onTerminal TerminalFunc) (*PollHandle, error) {
	if h, ok := s.Active(); ok {
		h.Cancel()
		<-h.Done()
	}
	return s.Start(ctx, req, onTerminal)
}

// Poll starts polling an already submitted job.
func (s *Session) Poll(ctx context.Context, jobID string, onTerminal TerminalFunc) (*PollHandle, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("Poll: empty job ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.active != nil || s.starting {
		return nil, ErrJobActive
	}
	return s.pollLocked(ctx, &model.AuditJob{JobID: jobID, Status: model.JobPending}, onTerminal), nil
}

// Run submits req and blocks until the job ends, ctx is canceled or the
// poll budget runs out.
func (s *Session) Run(ctx context.Context, req *model.AuditRequest) (*model.AuditResult, error) {
	h, err := s.Start(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return h.Wait()
}

// Current returns a copy of the tracked job.
func (s *Session) Current() (*model.AuditJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return nil, false
	}
	job := *s.job
	return &job, true
}

// Active returns the running poll, if any.
func (s *Session) Active() (*PollHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != nil
}

// LastResult returns a copy of the most recent completed result.
func (s *Session) LastResult() (*model.AuditResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, false
	}
	return s.last.Clone(), true
}

// Cancel stops the active poll and waits for it to wind down. It reports
// whether there was anything to cancel.
func (s *Session) Cancel() bool {
	h, ok := s.Active()
	if !ok {
		return false
	}
	h.Cancel()
	<-h.Done()
	return true
}

// Close cancels any active poll and closes the client.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Cancel()
	return s.client.Close()
}

func (s *Session) reserve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.active != nil || s.starting {
		return ErrJobActive
	}
	s.starting = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.starting = false
	s.mu.Unlock()
}

// pollLocked registers a new poll for job and launches its goroutine.
// Callers hold s.mu.
func (s *Session) pollLocked(ctx context.Context, job *model.AuditJob, onTerminal TerminalFunc) *PollHandle {
	pollCtx, cancel := context.WithCancel(ctx)
	h := newPollHandle(job.JobID, cancel)

	tracked := *job
	s.job = &tracked
	s.active = h

	h.emit(JobEvent{Type: JobEventStatus, Status: job.Status})
	go s.run(pollCtx, h, onTerminal)
	return h
}

func (s *Session) run(ctx context.Context, h *PollHandle, onTerminal TerminalFunc) {
	cfg := s.cfg
	logger := s.logger.With(logging.Field{Key: "job_id", Value: h.jobID})
	start := time.Now()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(cfg.MaxDuration)
	defer deadline.Stop()

	attempts := 0
	timeout := func() error {
		return &PollTimeout{JobID: h.jobID, Attempts: attempts, Elapsed: time.Since(start)}
	}

	var (
		result *model.AuditResult
		err    error
	)

loop:
	for {
		select {
		case <-ctx.Done():
			err = ErrPollCanceled
			break loop
		case <-deadline.C:
			err = timeout()
			break loop
		case <-ticker.C:
		}

		attempts++
		reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		payload, fetchErr := s.client.Status(reqCtx, h.jobID)
		cancel()

		if fetchErr != nil {
			if ctx.Err() != nil {
				err = ErrPollCanceled
				break loop
			}
			// Transport trouble is not terminal; keep polling.
			logger.Warn("poll tick failed",
				logging.Field{Key: "attempt", Value: attempts},
				logging.Field{Key: "error", Value: fetchErr.Error()})
			h.emit(JobEvent{Type: JobEventError, Attempt: attempts, Error: fetchErr.Error()})
		} else {
			s.observe(h, payload.Status)
			logger.Debug("poll tick",
				logging.Field{Key: "attempt", Value: attempts},
				logging.Field{Key: "status", Value: string(payload.Status)})

			switch payload.Status {
			case model.JobCompleted:
				result = Normalize(payload)
				result.JobID = h.jobID
				result.ReceivedAt = time.Now().UTC()
				break loop
			case model.JobFailed:
				msg := UnknownJobError
				if payload.Error != nil && strings.TrimSpace(*payload.Error) != "" {
					msg = *payload.Error
				}
				err = &JobFailure{JobID: h.jobID, Message: msg}
				break loop
			default:
				h.emit(JobEvent{Type: JobEventStatus, Status: payload.Status, Attempt: attempts})
			}
		}

		if attempts >= cfg.MaxAttempts {
			err = timeout()
			break loop
		}
	}

	s.finish(h, logger, result, err, attempts, onTerminal)
}

// observe records a server-reported status on the tracked job.
func (s *Session) observe(h *PollHandle, status model.JobStatus) {
	if !status.Known() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == h && s.job != nil {
		s.job.Status = status
	}
}

func (s *Session) finish(h *PollHandle, logger logging.Logger, result *model.AuditResult, err error, attempts int, onTerminal TerminalFunc) {
	s.mu.Lock()
	if s.active == h {
		s.active = nil
	}
	if result != nil {
		s.last = result.Clone()
	}
	s.mu.Unlock()

	h.mu.Lock()
	h.result = result.Clone()
	h.err = err
	h.mu.Unlock()

	switch {
	case result != nil:
		logger.Info("audit completed",
			logging.Field{Key: "attempts", Value: attempts},
			logging.Field{Key: "overall", Value: result.Scores.Overall})
		h.emit(JobEvent{Type: JobEventResult, Status: model.JobCompleted, Attempt: attempts})
	case errors.Is(err, ErrPollCanceled):
		logger.Info("polling canceled", logging.Field{Key: "attempts", Value: attempts})
		h.emit(JobEvent{Type: JobEventError, Attempt: attempts, Error: err.Error()})
	default:
		logger.Warn("audit ended without result",
			logging.Field{Key: "attempts", Value: attempts},
			logging.Field{Key: "error", Value: err.Error()})
		ev := JobEvent{Type: JobEventError, Attempt: attempts, Error: err.Error()}
		var jf *JobFailure
		if errors.As(err, &jf) {
			ev.Status = model.JobFailed
		}
		h.emit(ev)
	}
	close(h.events)

	if onTerminal != nil {
		onTerminal(result, err)
	}
	close(h.done)
}
