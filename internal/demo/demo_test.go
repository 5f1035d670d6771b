package demo_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/seoaudit/internal/demo"
	"github.com/raysh454/seoaudit/internal/model"
)

func TestGenerateResult_Deterministic(t *testing.T) {
	t.Parallel()
	a := demo.GenerateResult("job", "https://example.com", 7)
	b := demo.GenerateResult("job", "https://example.com", 7)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Fatal("expected identical payloads for identical inputs")
	}
	if a.Status != model.JobCompleted || a.ScoringVersion != demo.ScoringVersion {
		t.Errorf("unexpected status/version %q/%q", a.Status, a.ScoringVersion)
	}
}

func TestGenerateResult_ChecksAreConsistent(t *testing.T) {
	t.Parallel()
	for _, seed := range []int64{1, 2, 3, 42} {
		p := demo.GenerateResult("job", "https://example.com/page", seed)
		if len(p.Checks) == 0 {
			t.Fatalf("seed %d: no checks generated", seed)
		}
		for _, c := range p.Checks {
			if *c.PointsAwarded > *c.PointsPossible {
				t.Errorf("seed %d: check %s awarded %v > possible %v", seed, c.ID, *c.PointsAwarded, *c.PointsPossible)
			}
		}
		for name, v := range map[string]*float64{"technical": p.Scores.Technical, "content": p.Scores.Content, "ai": p.Scores.AI, "overall": p.Scores.Overall} {
			if *v < 0 || *v > 100 {
				t.Errorf("seed %d: %s score %v out of range", seed, name, *v)
			}
		}
	}
}

func TestGenerateResult_Caps(t *testing.T) {
	t.Parallel()
	p := demo.GenerateResult("job", "http://noindex.blocked.example", 1)

	if *p.Scores.Technical > 40 || *p.Scores.AI > 30 || *p.Scores.Overall > 50 {
		t.Errorf("expected capped scores, got %+v", p.Scores)
	}
	labels := strings.Join(p.Labels, ",")
	if labels != "noindex,ai_restricted" {
		t.Errorf("unexpected labels %q", labels)
	}
	for _, c := range p.Checks {
		if c.ID == "tech_https" && c.Status != string(model.CheckFail) {
			t.Errorf("expected tech_https to fail for http:// target, got %s", c.Status)
		}
	}
}

func TestWritePDF(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := demo.GenerateResult("job", "https://example.com", 1)
	if err := demo.WritePDF(&buf, p, time.Unix(0, 0)); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if err := demo.WritePDF(&buf, nil, time.Now()); err == nil {
		t.Error("expected error for nil payload")
	}
}

func newDemo(t *testing.T) *demo.Server {
	t.Helper()
	cfg := demo.DefaultConfig()
	cfg.PendingPolls = 1
	cfg.RunningPolls = 1
	return demo.NewServer(cfg, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, h http.Handler, url string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/audit", `{"url":"`+url+`","include_perf":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sr model.SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sr); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if sr.JobID == "" || sr.Status != model.JobPending {
		t.Fatalf("unexpected submit response %+v", sr)
	}
	return sr.JobID
}

func status(t *testing.T, h http.Handler, jobID string) *model.RawPayload {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/api/v1/audit/"+jobID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	var p model.RawPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return &p
}

func TestServer_Lifecycle(t *testing.T) {
	t.Parallel()
	s := newDemo(t)
	id := submit(t, s, "https://example.com")

	want := []model.JobStatus{model.JobPending, model.JobRunning, model.JobCompleted, model.JobCompleted}
	for i, w := range want {
		if got := status(t, s, id).Status; got != w {
			t.Fatalf("poll %d: expected %s, got %s", i+1, w, got)
		}
	}

	p := status(t, s, id)
	if p.Scores == nil || len(p.Checks) == 0 {
		t.Fatalf("expected full result once completed, got %+v", p)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/audit/"+id+"/pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "audit_"+id[:8]+".pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
}

func TestServer_FailingURL(t *testing.T) {
	t.Parallel()
	s := newDemo(t)
	id := submit(t, s, "https://fail.example.com")

	var p *model.RawPayload
	for range 3 {
		p = status(t, s, id)
	}
	if p.Status != model.JobFailed {
		t.Fatalf("expected failed, got %s", p.Status)
	}
	if p.Error == nil || *p.Error == "" {
		t.Error("expected error message on failed job")
	}
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()
	s := newDemo(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"empty url", http.MethodPost, "/api/v1/audit", `{"url":"  "}`, http.StatusUnprocessableEntity},
		{"bad json", http.MethodPost, "/api/v1/audit", `{`, http.StatusUnprocessableEntity},
		{"unknown job", http.MethodGet, "/api/v1/audit/nope", "", http.StatusNotFound},
		{"unknown pdf", http.MethodGet, "/api/v1/audit/nope/pdf", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var er model.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil || er.Detail == "" {
				t.Errorf("expected detail body, got %q", rec.Body.String())
			}
		})
	}

	id := submit(t, s, "https://example.com")
	if rec := do(t, s, http.MethodGet, "/api/v1/audit/"+id+"/pdf", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("pdf before completion: expected 400, got %d", rec.Code)
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	rec := do(t, newDemo(t), http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
