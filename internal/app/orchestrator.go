package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/seoaudit/internal/auditclient"
	"github.com/raysh454/seoaudit/internal/compare"
	"github.com/raysh454/seoaudit/internal/history"
	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/model"
)

var (
	ErrHistoryDisabled  = errors.New("audit history is disabled")
	ErrNotEnoughHistory = errors.New("need at least two recorded audits to compare")
)

// CurrentState is what the console shows about the session's audit.
type CurrentState struct {
	Job    *model.AuditJob    `json:"job,omitempty"`
	Active bool               `json:"active"`
	Result *model.AuditResult `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Orchestrator ties one audit session to the history store and fans job
// events out to any number of subscribers.
type Orchestrator struct {
	cfg     *Config
	session *auditclient.Session
	store   *history.Store
	logger  logging.Logger

	// polls outlive the request that started them
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	subs    map[string][]chan auditclient.JobEvent
	lastErr terminalError
}

type terminalError struct {
	jobID string
	msg   string
}

// NewOrchestrator wires client and store (which may be nil) together.
func NewOrchestrator(cfg *Config, client auditclient.Client, store *history.Store, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:     cfg,
		session: auditclient.NewSession(client, cfg.Poll, logger),
		store:   store,
		logger:  logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[string][]chan auditclient.JobEvent),
	}
}

// Session exposes the underlying session.
func (o *Orchestrator) Session() *auditclient.Session { return o.session }

// History exposes the history store; nil when disabled.
func (o *Orchestrator) History() *history.Store { return o.store }

// StartAudit submits req and polls it in the background. With replace set
// an active audit is canceled first; otherwise ErrJobActive is returned.
func (o *Orchestrator) StartAudit(req *model.AuditRequest, replace bool) (*model.AuditJob, error) {
	h, err := o.start(o.ctx, req, replace)
	if err != nil {
		return nil, err
	}
	if job, ok := o.session.Current(); ok && job.JobID == h.JobID() {
		return job, nil
	}
	return &model.AuditJob{JobID: h.JobID(), Status: model.JobPending}, nil
}

// RunAudit submits req and blocks until the audit ends or ctx is canceled.
func (o *Orchestrator) RunAudit(ctx context.Context, req *model.AuditRequest) (*model.AuditResult, error) {
	h, err := o.start(ctx, req, false)
	if err != nil {
		return nil, err
	}
	return h.Wait()
}

func (o *Orchestrator) start(ctx context.Context, req *model.AuditRequest, replace bool) (*auditclient.PollHandle, error) {
	startFn := o.session.Start
	if replace {
		startFn = o.session.Replace
	}

	// The callback may fire before startFn returns; it waits for the id.
	ready := make(chan string, 1)
	h, err := startFn(ctx, req, func(result *model.AuditResult, err error) {
		o.onTerminal(<-ready, result, err)
	})
	if err != nil {
		return nil, err
	}
	ready <- h.JobID()

	o.mu.Lock()
	o.subs[h.JobID()] = []chan auditclient.JobEvent{}
	o.mu.Unlock()

	go o.forward(h)
	return h, nil
}

// onTerminal records the outcome and saves completed results to history.
func (o *Orchestrator) onTerminal(jobID string, result *model.AuditResult, err error) {
	if err != nil {
		o.mu.Lock()
		o.lastErr = terminalError{jobID: jobID, msg: err.Error()}
		o.mu.Unlock()
		return
	}
	if o.store == nil || result == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := o.store.Save(ctx, result); err != nil && !errors.Is(err, history.ErrAlreadyRecorded) {
		o.logger.Warn("failed to record audit",
			logging.Field{Key: "job_id", Value: result.JobID},
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// forward copies the poll's events to subscribers and closes their channels
// once the poll ends.
func (o *Orchestrator) forward(h *auditclient.PollHandle) {
	for ev := range h.Events() {
		o.mu.Lock()
		for _, ch := range o.subs[h.JobID()] {
			// Non-blocking send; drop if buffer is full.
			select {
			case ch <- ev:
			default:
			}
		}
		o.mu.Unlock()
	}

	o.mu.Lock()
	for _, ch := range o.subs[h.JobID()] {
		close(ch)
	}
	delete(o.subs, h.JobID())
	o.mu.Unlock()
}

// Subscribe returns a stream of the active audit's events. The channel is
// closed when the audit ends; call the returned func to stop early. ok is
// false when no audit is active.
func (o *Orchestrator) Subscribe() (jobID string, events <-chan auditclient.JobEvent, unsubscribe func(), ok bool) {
	h, active := o.session.Active()
	if !active {
		return "", nil, func() {}, false
	}
	jobID = h.JobID()
	ch := make(chan auditclient.JobEvent, 16)

	o.mu.Lock()
	list, forwarding := o.subs[jobID]
	if !forwarding {
		o.mu.Unlock()
		return "", nil, func() {}, false
	}
	o.subs[jobID] = append(list, ch)
	o.mu.Unlock()

	unsubscribe = func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		list := o.subs[jobID]
		for i, c := range list {
			if c == ch {
				o.subs[jobID] = append(list[:i], list[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return jobID, ch, unsubscribe, true
}

// Current describes the tracked job and the last result.
func (o *Orchestrator) Current() CurrentState {
	var st CurrentState
	if job, ok := o.session.Current(); ok {
		st.Job = job
	}
	_, st.Active = o.session.Active()
	if res, ok := o.session.LastResult(); ok && st.Job != nil && res.JobID == st.Job.JobID {
		st.Result = res
	}
	o.mu.Lock()
	if st.Job != nil && o.lastErr.jobID == st.Job.JobID {
		st.Error = o.lastErr.msg
	}
	o.mu.Unlock()
	return st
}

// CancelCurrent stops the active audit; it reports whether one was running.
func (o *Orchestrator) CancelCurrent() bool {
	return o.session.Cancel()
}

// Result returns the result of jobID from the session or from history.
func (o *Orchestrator) Result(ctx context.Context, jobID string) (*model.AuditResult, error) {
	if res, ok := o.session.LastResult(); ok && res.JobID == jobID {
		return res, nil
	}
	if o.store == nil {
		return nil, history.ErrNotFound
	}
	return o.store.Get(ctx, jobID)
}

// ListHistory lists recorded audits of site (all when empty), newest first.
func (o *Orchestrator) ListHistory(ctx context.Context, site string, limit int) ([]history.Entry, error) {
	if o.store == nil {
		return nil, ErrHistoryDisabled
	}
	return o.store.List(ctx, site, limit)
}

// Compare diffs two audits by job id.
func (o *Orchestrator) Compare(ctx context.Context, baseID, headID string) (*compare.ResultDelta, error) {
	if strings.TrimSpace(baseID) == "" || strings.TrimSpace(headID) == "" {
		return nil, fmt.Errorf("compare: base and head job ids are required")
	}
	base, err := o.Result(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("compare: base %s: %w", baseID, err)
	}
	head, err := o.Result(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("compare: head %s: %w", headID, err)
	}
	return compare.DiffResults(base, head), nil
}

// CompareLatest diffs the two most recent recorded audits of site.
func (o *Orchestrator) CompareLatest(ctx context.Context, site string) (*compare.ResultDelta, error) {
	if o.store == nil {
		return nil, ErrHistoryDisabled
	}
	latest, err := o.store.Latest(ctx, site, 2)
	if err != nil {
		return nil, err
	}
	if len(latest) < 2 {
		return nil, ErrNotEnoughHistory
	}
	return compare.DiffResults(latest[1], latest[0]), nil
}

// DownloadPDF streams the server rendered report of jobID into w.
func (o *Orchestrator) DownloadPDF(ctx context.Context, jobID string, w io.Writer) (int64, error) {
	return o.session.Client().DownloadPDF(ctx, jobID, w)
}

// Health reports the audit API's health.
func (o *Orchestrator) Health(ctx context.Context) (string, error) {
	return o.session.Client().Health(ctx)
}

// Shutdown cancels the active audit and releases the client and the store.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.cancel()

	done := make(chan error, 1)
	go func() { done <- o.session.Close() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if o.store != nil {
		if cerr := o.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
