package auditclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/seoaudit/internal/demo"
	"github.com/raysh454/seoaudit/internal/model"
)

var _ Client = (*FakeClient)(nil)

// FakeStep is one scripted answer of FakeClient.Status.
type FakeStep struct {
	// Status reported by the step; ignored when Err is set.
	Status model.JobStatus

	// Err is returned instead of a payload (e.g. a *NetworkError).
	Err error

	// Payload overrides the generated payload of a completed step.
	Payload *model.RawPayload

	// Message is the server error of a failed step.
	Message string
}

// Step helpers.
func StatusStep(s model.JobStatus) FakeStep { return FakeStep{Status: s} }
func ErrorStep(err error) FakeStep { return FakeStep{Err: err} }
func FailedStep(msg string) FakeStep { return FakeStep{Status: model.JobFailed, Message: msg} }
func CompletedStep(p *model.RawPayload) FakeStep { return FakeStep{Status: model.JobCompleted, Payload: p} }

type fakeJob struct {
	url     string
	steps   []FakeStep
	pos     int
	fetches int
	last    *model.RawPayload
}

// FakeClient is an in-memory Client. Each job walks through a scripted list
// of steps, one per Status call, and stays on the last step once reached.
// Completed steps without a payload are filled by the demo generator.
type FakeClient struct {
	mu            sync.Mutex
	defaultScript []FakeStep
	scripts       map[string][]FakeStep
	jobs          map[string]*fakeJob
	submitErr     error
	seed          int64
	submits       int
	closed        bool
}

// NewFakeClient returns a client whose jobs go pending, running, completed.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		defaultScript: []FakeStep{
			StatusStep(model.JobPending),
			StatusStep(model.JobRunning),
			StatusStep(model.JobCompleted),
		},
		scripts: make(map[string][]FakeStep),
		jobs:    make(map[string]*fakeJob),
		seed:    1,
	}
}

// SetDefaultScript replaces the script used by newly submitted jobs.
func (f *FakeClient) SetDefaultScript(steps ...FakeStep) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultScript = append([]FakeStep(nil), steps...)
}

// Script sets the steps for jobID, which does not need to be submitted
// through the fake first.
func (f *FakeClient) Script(jobID string, steps ...FakeStep) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[jobID] = append([]FakeStep(nil), steps...)
	if j, ok := f.jobs[jobID]; ok {
		j.steps, j.pos = f.scripts[jobID], 0
	}
}

// FailSubmit makes every following Submit return err; nil resets it.
func (f *FakeClient) FailSubmit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitErr = err
}

// SetSeed changes the seed handed to the demo generator.
func (f *FakeClient) SetSeed(seed int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seed = seed
}

// Fetches returns how many times Status was called for jobID.
func (f *FakeClient) Fetches(jobID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[jobID]; ok {
		return j.fetches
	}
	return 0
}

// Submits returns how many submissions reached the fake.
func (f *FakeClient) Submits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

func (f *FakeClient) Submit(ctx context.Context, req *model.AuditRequest) (*model.AuditJob, error) {
	const op = "submit audit"
	if req == nil {
		return nil, fmt.Errorf("%s: nil request", op)
	}
	target, err := NormalizeURL(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.closed {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("client closed")}
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}

	id := uuid.NewString()
	f.jobs[id] = &fakeJob{url: target, steps: f.defaultScript}
	return &model.AuditJob{JobID: id, Status: model.JobPending, URL: target}, nil
}

func (f *FakeClient) Status(ctx context.Context, jobID string) (*model.RawPayload, error) {
	const op = "poll audit"
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	j, ok := f.jobs[jobID]
	if !ok {
		steps, scripted := f.scripts[jobID]
		if !scripted {
			return nil, &APIError{Op: op, StatusCode: http.StatusNotFound, Detail: "Audit not found"}
		}
		j = &fakeJob{url: "https://example.com", steps: steps}
		f.jobs[jobID] = j
	}
	j.fetches++

	if len(j.steps) == 0 {
		return &model.RawPayload{JobID: jobID, Status: model.JobPending, URL: j.url}, nil
	}
	step := j.steps[j.pos]
	if j.pos < len(j.steps)-1 {
		j.pos++
	}
	if step.Err != nil {
		return nil, step.Err
	}

	var p *model.RawPayload
	switch step.Status {
	case model.JobCompleted:
		if step.Payload != nil {
			cp := *step.Payload
			p = &cp
		} else {
			p = demo.GenerateResult(jobID, j.url, f.seed)
		}
		p.Status = model.JobCompleted
	case model.JobFailed:
		p = &model.RawPayload{Status: model.JobFailed, URL: j.url}
		if step.Message != "" {
			msg := step.Message
			p.Error = &msg
		}
	default:
		p = &model.RawPayload{Status: step.Status, URL: j.url}
	}
	if p.JobID == "" {
		p.JobID = jobID
	}
	j.last = p
	return p, nil
}

func (f *FakeClient) DownloadPDF(ctx context.Context, jobID string, w io.Writer) (int64, error) {
	const op = "download pdf"
	if err := ctx.Err(); err != nil {
		return 0, &NetworkError{Op: op, Err: err}
	}

	f.mu.Lock()
	j, ok := f.jobs[jobID]
	var last *model.RawPayload
	if ok {
		last = j.last
	}
	f.mu.Unlock()

	if !ok {
		return 0, &APIError{Op: op, StatusCode: http.StatusNotFound, Detail: "Audit not found"}
	}
	if last == nil || last.Status != model.JobCompleted {
		return 0, &APIError{Op: op, StatusCode: http.StatusBadRequest, Detail: "Audit not completed yet"}
	}

	var buf bytes.Buffer
	if err := demo.WritePDF(&buf, last, time.Now()); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return io.Copy(w, &buf)
}

func (f *FakeClient) Health(ctx context.Context) (string, error) {
	return "ok", nil
}

func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
