package auditclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/webclient"
)

// Client talks to the audit API. HTTPClient is the network implementation;
// FakeClient is a drop-in replacement for demos and tests.
type Client interface {
	// Submit starts an audit and returns the job the server created.
	Submit(ctx context.Context, req *model.AuditRequest) (*model.AuditJob, error)

	// Status fetches the job resource once.
	Status(ctx context.Context, jobID string) (*model.RawPayload, error)

	// DownloadPDF streams the server-rendered report of a completed job to w.
	DownloadPDF(ctx context.Context, jobID string, w io.Writer) (int64, error)

	// Health reports the API's health status string.
	Health(ctx context.Context) (string, error)

	// Close releases any resources held by the client.
	Close() error
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient implements Client over a webclient backend.
type HTTPClient struct {
	baseURL string
	wc      webclient.WebClient
	logger  logging.Logger
}

// NewHTTPClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api/v1").
func NewHTTPClient(baseURL string, wc webclient.WebClient, logger logging.Logger) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("NewHTTPClient: empty base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("NewHTTPClient: parse base url: %w", err)
	}
	if wc == nil {
		return nil, fmt.Errorf("NewHTTPClient: nil webclient")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &HTTPClient{
		baseURL: baseURL,
		wc:      wc,
		logger:  logger.With(logging.Field{Key: "component", Value: "auditclient"}),
	}, nil
}

// BaseURL returns the API root this client talks to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) jobURL(jobID string, suffix ...string) string {
	parts := append([]string{c.baseURL, "audit", url.PathEscape(jobID)}, suffix...)
	return strings.Join(parts, "/")
}

// Submit normalizes the request URL and POSTs it to {base}/audit.
func (c *HTTPClient) Submit(ctx context.Context, req *model.AuditRequest) (*model.AuditJob, error) {
	const op = "submit audit"
	if req == nil {
		return nil, fmt.Errorf("%s: nil request", op)
	}
	target, err := NormalizeURL(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	body, err := json.Marshal(model.AuditRequest{URL: target, IncludePerformance: req.IncludePerformance})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	c.logger.Info("submitting audit", logging.Field{Key: "url", Value: target})

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/audit",
		Headers: http.Header{"Content-Type": []string{"application/json"}, "Accept": []string{"application/json"}},
		Body:    body,
	})
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if !resp.OK() {
		return nil, apiError(op, resp)
	}

	var sr model.SubmitResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(sr.JobID) == "" {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Detail: "response carried no job_id"}
	}

	job := &model.AuditJob{JobID: sr.JobID, Status: model.JobPending, URL: target}
	if sr.Status.Known() {
		job.Status = sr.Status
	}
	c.logger.Info("audit submitted", logging.Field{Key: "job_id", Value: job.JobID})
	return job, nil
}

// Status performs one GET of {base}/audit/{jobID}.
func (c *HTTPClient) Status(ctx context.Context, jobID string) (*model.RawPayload, error) {
	const op = "poll audit"
	if jobID == "" {
		return nil, fmt.Errorf("%s: empty job ID", op)
	}

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     c.jobURL(jobID),
		Headers: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if !resp.OK() {
		return nil, apiError(op, resp)
	}

	var payload model.RawPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.JobID == "" {
		payload.JobID = jobID
	}
	return &payload, nil
}

// DownloadPDF copies the PDF report of jobID into w.
func (c *HTTPClient) DownloadPDF(ctx context.Context, jobID string, w io.Writer) (int64, error) {
	const op = "download pdf"
	if jobID == "" {
		return 0, fmt.Errorf("%s: empty job ID", op)
	}
	if w == nil {
		return 0, fmt.Errorf("%s: nil writer", op)
	}

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     c.jobURL(jobID, "pdf"),
		Headers: http.Header{"Accept": []string{"application/pdf"}},
	})
	if err != nil {
		return 0, &NetworkError{Op: op, Err: err}
	}
	if !resp.OK() {
		return 0, apiError(op, resp)
	}

	n, err := io.Copy(w, bytes.NewReader(resp.Body))
	if err != nil {
		return n, fmt.Errorf("%s: write: %w", op, err)
	}
	c.logger.Info("downloaded pdf", logging.Field{Key: "job_id", Value: jobID}, logging.Field{Key: "bytes", Value: n})
	return n, nil
}

// Health calls {base}/health.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	const op = "health"
	resp, err := c.wc.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: c.baseURL + "/health"})
	if err != nil {
		return "", &NetworkError{Op: op, Err: err}
	}
	if !resp.OK() {
		return "", apiError(op, resp)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return body.Status, nil
}

func (c *HTTPClient) Close() error {
	return c.wc.Close()
}

// apiError builds an APIError from a non-2xx response. FastAPI sends
// "detail" either as a string or, for validation errors, as a list of
// objects carrying "msg".
func apiError(op string, resp *webclient.Response) *APIError {
	e := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Detail:     fmt.Sprintf("%s failed with status %d", op, resp.StatusCode),
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil || len(body.Detail) == 0 {
		return e
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			e.Detail = s
		}
		return e
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			e.Detail = strings.Join(msgs, "; ")
		}
	}
	return e
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
