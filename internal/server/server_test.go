package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/seoaudit/internal/app"
	"github.com/raysh454/seoaudit/internal/auditclient"
	"github.com/raysh454/seoaudit/internal/history"
	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/server"
	"github.com/raysh454/seoaudit/internal/testutil"
)

func newTestServer(t *testing.T) (*server.Server, *auditclient.FakeClient) {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.API.Offline = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.Poll = auditclient.PollConfig{
		Interval:       5 * time.Millisecond,
		MaxAttempts:    1000,
		MaxDuration:    5 * time.Second,
		RequestTimeout: time.Second,
	}

	logger := &testutil.DummyLogger{}
	store, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	fake := auditclient.NewFakeClient()
	orch := app.NewOrchestrator(cfg, fake, store, logger)
	t.Cleanup(func() { _ = orch.Shutdown(context.Background()) })

	s, err := server.NewServer(server.Config{
		ListenAddr:   ":0",
		AppConfig:    cfg,
		Orchestrator: orch,
		Logger:       logger,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, fake
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// startAudit posts an audit and waits until it is no longer active.
func startAudit(t *testing.T, s http.Handler, url string) model.AuditJob {
	t.Helper()
	rec := doJSON(t, s, "POST", "/audits", `{"url":"`+url+`"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var job model.AuditJob
	decodeJSON(t, rec, &job)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var st app.CurrentState
		decodeJSON(t, doJSON(t, s, "GET", "/audits/current", ""), &st)
		if !st.Active && st.Job != nil && st.Job.JobID == job.JobID {
			if st.Job.Status != model.JobCompleted {
				t.Fatalf("audit ended as %s: %s", st.Job.Status, st.Error)
			}
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("audit did not finish")
	return job
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "GET", "/health", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestServer_CORS_Preflight(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "OPTIONS", "/audits/current", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if m := rec.Header().Get("Access-Control-Allow-Methods"); m != "GET, DELETE" {
		t.Errorf("unexpected allowed methods %q", m)
	}
}

// ─── Audits ────────────────────────────────────────────────────────────

func TestServer_StartAudit_Conflict(t *testing.T) {
	t.Parallel()
	s, fake := newTestServer(t)
	fake.SetDefaultScript(auditclient.StatusStep(model.JobRunning))

	rec := doJSON(t, s, "POST", "/audits", `{"url":"example.com"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var job model.AuditJob
	decodeJSON(t, rec, &job)
	if job.JobID == "" || job.URL != "https://example.com" {
		t.Errorf("unexpected job %+v", job)
	}

	rec = doJSON(t, s, "POST", "/audits", `{"url":"other.example"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, s, "POST", "/audits", `{"url":"other.example","replace":true}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202 on replace, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_StartAudit_BadRequests(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	if rec := doJSON(t, s, "POST", "/audits", `{invalid}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := doJSON(t, s, "POST", "/audits", `{"url":"  "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestServer_CancelCurrent(t *testing.T) {
	t.Parallel()
	s, fake := newTestServer(t)

	if rec := doJSON(t, s, "DELETE", "/audits/current", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without an audit, got %d", rec.Code)
	}

	fake.SetDefaultScript(auditclient.StatusStep(model.JobRunning))
	_ = doJSON(t, s, "POST", "/audits", `{"url":"example.com"}`)

	var st app.CurrentState
	decodeJSON(t, doJSON(t, s, "GET", "/audits/current", ""), &st)
	if !st.Active || st.Job == nil {
		t.Fatalf("expected an active audit, got %+v", st)
	}

	if rec := doJSON(t, s, "DELETE", "/audits/current", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, s, "DELETE", "/audits/current", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after cancel, got %d", rec.Code)
	}
}

func TestServer_AuditResult(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	job := startAudit(t, s, "example.com")

	rec := doJSON(t, s, "GET", "/audits/"+job.JobID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res model.AuditResult
	decodeJSON(t, rec, &res)
	if res.JobID != job.JobID || len(res.Checks) == 0 {
		t.Errorf("unexpected result %+v", res)
	}

	if rec := doJSON(t, s, "GET", "/audits/unknown", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestServer_GetChecks(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	job := startAudit(t, s, "example.com")

	rec := doJSON(t, s, "GET", "/audits/"+job.JobID+"/checks?tab=issues", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp server.ChecksResponse
	decodeJSON(t, rec, &resp)
	if resp.Count != len(resp.Checks) || resp.Count != resp.Totals.Issues {
		t.Errorf("issue count mismatch: count=%d checks=%d totals=%d", resp.Count, len(resp.Checks), resp.Totals.Issues)
	}
	for _, c := range resp.Checks {
		if c.Status != model.CheckFail && c.Status != model.CheckPartial {
			t.Errorf("issues tab returned %s check %s", c.Status, c.ID)
		}
	}

	rec = doJSON(t, s, "GET", "/audits/"+job.JobID+"/checks?status=pass", "")
	decodeJSON(t, rec, &resp)
	for _, c := range resp.Checks {
		if c.Status != model.CheckPass {
			t.Errorf("status filter returned %s check %s", c.Status, c.ID)
		}
	}

	if rec := doJSON(t, s, "GET", "/audits/"+job.JobID+"/checks?tab=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad tab, got %d", rec.Code)
	}
}

func TestServer_Export(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	job := startAudit(t, s, "example.com")

	rec := doJSON(t, s, "GET", "/audits/"+job.JobID+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, ".json") {
		t.Errorf("unexpected disposition %q", cd)
	}
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	if _, ok := doc["summary"]; !ok {
		t.Errorf("json export lacks summary: %v", doc)
	}

	rec = doJSON(t, s, "GET", "/audits/"+job.JobID+"/export?format=markdown", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "# SEO Audit Report") {
		t.Error("markdown export lacks the title")
	}

	if rec := doJSON(t, s, "GET", "/audits/"+job.JobID+"/export?format=xml", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad format, got %d", rec.Code)
	}
}

func TestServer_DownloadPDF(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	job := startAudit(t, s, "example.com")

	rec := doJSON(t, s, "GET", "/audits/"+job.JobID+"/pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Error("body is not a PDF")
	}

	if rec := doJSON(t, s, "GET", "/audits/unknown/pdf", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

// ─── History ───────────────────────────────────────────────────────────

func TestServer_HistoryAndCompare(t *testing.T) {
	t.Parallel()
	s, fake := newTestServer(t)

	if rec := doJSON(t, s, "GET", "/compare?url=example.com", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without history, got %d", rec.Code)
	}

	first := startAudit(t, s, "example.com")
	fake.SetSeed(7)
	second := startAudit(t, s, "https://example.com/")

	rec := doJSON(t, s, "GET", "/history?url=example.com", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []history.Entry
	decodeJSON(t, rec, &entries)
	if len(entries) != 2 || entries[0].JobID != second.JobID {
		t.Fatalf("unexpected history %+v", entries)
	}

	rec = doJSON(t, s, "GET", "/compare?base="+first.JobID+"&head="+second.JobID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var delta map[string]any
	decodeJSON(t, rec, &delta)
	if delta["base_job_id"] != first.JobID || delta["head_job_id"] != second.JobID {
		t.Errorf("unexpected delta ids %v %v", delta["base_job_id"], delta["head_job_id"])
	}

	if rec := doJSON(t, s, "GET", "/compare", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without params, got %d", rec.Code)
	}
	if rec := doJSON(t, s, "GET", "/history?limit=-1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}
}

// ─── System ────────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var h server.HealthResponse
	decodeJSON(t, rec, &h)
	if h.Status != "ok" || h.API != "ok" {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/audits/{jobID}/checks") {
		t.Error("swagger doc lacks the checks route")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func TestServer_CurrentWS(t *testing.T) {
	t.Parallel()
	s, fake := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/audits/current"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	var msg server.ErrorResponse
	if err := conn.ReadJSON(&msg); err != nil || msg.Error == "" {
		t.Errorf("expected an error message without an audit, got %+v %v", msg, err)
	}
	conn.Close()

	fake.SetDefaultScript(
		auditclient.StatusStep(model.JobRunning),
		auditclient.StatusStep(model.JobRunning),
		auditclient.StatusStep(model.JobRunning),
		auditclient.StatusStep(model.JobCompleted),
	)
	_ = doJSON(t, s, "POST", "/audits", `{"url":"example.com"}`)

	conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first map[string]any
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read state: %v", err)
	}
	if _, ok := first["job"]; !ok {
		if _, isErr := first["error"]; isErr {
			t.Skip("audit finished before subscribing")
		}
		t.Fatalf("expected current state first, got %v", first)
	}

	var last auditclient.JobEvent
	for {
		var ev auditclient.JobEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		last = ev
	}
	if last.Type != auditclient.JobEventResult || last.Status != model.JobCompleted {
		t.Errorf("unexpected final event %+v", last)
	}
}
