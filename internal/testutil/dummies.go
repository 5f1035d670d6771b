// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns how many warnings were recorded.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// ScriptedResponse is one canned answer of ScriptedWebClient.
type ScriptedResponse struct {
	StatusCode int
	Body       string
	Headers    http.Header
	Err        error
}

// ScriptedWebClient implements webclient.WebClient. Responses are queued per
// "METHOD URL" key and consumed in order; the last one repeats. Unscripted
// requests get a 404 with a FastAPI style detail body.
type ScriptedWebClient struct {
	ResponseDelay time.Duration

	mu        sync.Mutex
	responses map[string][]ScriptedResponse
	Requests  []*webclient.Request
	closed    bool
}

// NewScriptedWebClient returns an empty script.
func NewScriptedWebClient() *ScriptedWebClient {
	return &ScriptedWebClient{responses: make(map[string][]ScriptedResponse)}
}

// On queues responses for method and url.
func (d *ScriptedWebClient) On(method, url string, rs ...ScriptedResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := method + " " + url
	d.responses[key] = append(d.responses[key], rs...)
}

func (d *ScriptedWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	key := method + " " + req.URL
	queue := d.responses[key]
	var r ScriptedResponse
	switch len(queue) {
	case 0:
		r = ScriptedResponse{StatusCode: http.StatusNotFound, Body: `{"detail":"Not Found"}`}
	case 1:
		r = queue[0]
	default:
		r = queue[0]
		d.responses[key] = queue[1:]
	}
	d.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	headers := r.Headers
	if headers == nil {
		headers = http.Header{}
	}
	return &webclient.Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(r.Body),
		StatusCode: r.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// RequestCount returns how many requests were made.
func (d *ScriptedWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

func (d *ScriptedWebClient) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *ScriptedWebClient) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
