package webclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/webclient"
)

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Agent", r.Header.Get("User-Agent"))
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Audit not found"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func backends(t *testing.T) map[string]webclient.WebClient {
	t.Helper()
	cfg := webclient.Config{UserAgent: "seoaudit-test", Timeout: 5 * time.Second}
	logger := logging.Nop()

	nethttp, err := webclient.NewNetHTTPClient(cfg, logger, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	resty, err := webclient.NewRestyClient(cfg, logger, nil)
	if err != nil {
		t.Fatalf("NewRestyClient: %v", err)
	}
	return map[string]webclient.WebClient{"nethttp": nethttp, "resty": resty}
}

func TestBackends_PostRoundTrip(t *testing.T) {
	t.Parallel()
	ts := newEchoServer(t)

	for name, client := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer client.Close()
			resp, err := client.Do(context.Background(), &webclient.Request{
				Method:  "post",
				URL:     ts.URL + "/audit",
				Headers: http.Header{"Content-Type": []string{"application/json"}},
				Body:    []byte(`{"url":"https://example.com"}`),
			})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode != http.StatusCreated || !resp.OK() {
				t.Errorf("expected 201, got %d", resp.StatusCode)
			}
			if string(resp.Body) != `{"url":"https://example.com"}` {
				t.Errorf("unexpected echo body %q", resp.Body)
			}
			if got := resp.Headers.Get("X-Method"); got != http.MethodPost {
				t.Errorf("expected POST, got %q", got)
			}
			if got := resp.Headers.Get("X-Agent"); got != "seoaudit-test" {
				t.Errorf("expected user agent to be sent, got %q", got)
			}
			if got := resp.Headers.Get("X-Content-Type"); got != "application/json" {
				t.Errorf("expected content type to be forwarded, got %q", got)
			}
		})
	}
}

func TestBackends_NonSuccessIsNotAnError(t *testing.T) {
	t.Parallel()
	ts := newEchoServer(t)

	for name, client := range backends(t) {
		t.Run(name, func(t *testing.T) {
			resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL + "/missing"})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode != http.StatusNotFound || resp.OK() {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
		})
	}
}

func TestBackends_TransportError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	for name, client := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := client.Do(context.Background(), &webclient.Request{URL: url}); err == nil {
				t.Fatal("expected error for closed server")
			}
		})
	}
}

func TestBackends_ContextCanceled(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	for name, client := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err := client.Do(ctx, &webclient.Request{URL: ts.URL})
			if err == nil {
				t.Fatal("expected error for canceled context")
			}
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				t.Errorf("expected context deadline, got %v", ctx.Err())
			}
		})
	}
}

func TestNilRequest(t *testing.T) {
	t.Parallel()
	for name, client := range backends(t) {
		if _, err := client.Do(context.Background(), nil); err == nil {
			t.Errorf("%s: expected error for nil request", name)
		}
	}
}

func TestNewWebClient_Factory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		backend webclient.Backend
		wantErr bool
	}{
		{backend: "", wantErr: false},
		{backend: webclient.BackendNetHTTP, wantErr: false},
		{backend: "RESTY", wantErr: false},
		{backend: "curl", wantErr: true},
	}
	for _, tt := range tests {
		client, err := webclient.NewWebClient(webclient.Config{Backend: tt.backend}, logging.Nop())
		if (err != nil) != tt.wantErr {
			t.Errorf("backend %q: err=%v wantErr=%v", tt.backend, err, tt.wantErr)
			continue
		}
		if client != nil {
			_ = client.Close()
		}
	}

	got := webclient.ListBackends()
	if len(got) < 2 || got[0] != "nethttp" || got[1] != "resty" {
		t.Errorf("unexpected backends %v", got)
	}
}

func TestBackends_BodyLimit(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	t.Cleanup(ts.Close)

	cfg := webclient.Config{MaxBodyBytes: 1024}
	nethttp, _ := webclient.NewNetHTTPClient(cfg, logging.Nop(), nil)
	resty, _ := webclient.NewRestyClient(cfg, logging.Nop(), nil)

	for name, client := range map[string]webclient.WebClient{"nethttp": nethttp, "resty": resty} {
		_, err := client.Do(context.Background(), &webclient.Request{Method: "GET", URL: ts.URL})
		if !errors.Is(err, webclient.ErrBodyTooLarge) {
			t.Errorf("%s: expected ErrBodyTooLarge, got %v", name, err)
		}
		_ = client.Close()
	}
}
