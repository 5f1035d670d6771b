package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raysh454/seoaudit/internal/app"
)

// writeTestConfig writes an offline config with fast polling and a private
// history database.
func writeTestConfig(t *testing.T) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "config.yaml")
	yml := `
api:
  offline: true
poll:
  interval: 5ms
  max_attempts: 1000
  max_duration: 5s
log:
  level: error
history:
  enabled: true
  path: ` + filepath.Join(dir, "history.db") + `
report_dir: ` + filepath.Join(dir, "reports") + `
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()

	for _, name := range []string{"audit", "pdf", "serve", "history", "compare", "version"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
	for _, flag := range []string{"config", "api", "offline", "verbose"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing global flag %q", flag)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "seoaudit version ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAuditCmd_Offline(t *testing.T) {
	t.Setenv(app.EnvAPIBase, "")
	cfgPath, dir := writeTestConfig(t)

	out, err := execute(t, "audit", "example.com", "--config", cfgPath, "--pdf")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var doc struct {
		Result struct {
			JobID string `json:"job_id"`
			URL   string `json:"url"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if doc.Result.URL != "https://example.com" || doc.Result.JobID == "" {
		t.Errorf("unexpected result %+v", doc.Result)
	}

	pdfs, _ := filepath.Glob(filepath.Join(dir, "reports", "audit_*.pdf"))
	if len(pdfs) != 1 {
		t.Errorf("expected one saved pdf, got %v", pdfs)
	}

	out, err = execute(t, "history", "--config", cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "https://example.com") {
		t.Errorf("history does not list the audit:\n%s", out)
	}

	if _, err := execute(t, "compare", "--config", cfgPath, "--url", "example.com"); err == nil {
		t.Error("compare with a single audit should fail")
	}
	if _, err := execute(t, "audit", "example.com", "--config", cfgPath, "--format", "markdown"); err != nil {
		t.Fatalf("second audit: %v", err)
	}
	out, err = execute(t, "compare", "--config", cfgPath, "--url", "example.com")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out, "Overall") {
		t.Errorf("unexpected compare output:\n%s", out)
	}
}

func TestAuditCmd_BadFormat(t *testing.T) {
	t.Setenv(app.EnvAPIBase, "")
	cfgPath, _ := writeTestConfig(t)

	if _, err := execute(t, "audit", "example.com", "--config", cfgPath, "--format", "xml"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestCompareCmd_Args(t *testing.T) {
	t.Setenv(app.EnvAPIBase, "")
	cfgPath, _ := writeTestConfig(t)

	if _, err := execute(t, "compare", "--config", cfgPath); err == nil {
		t.Error("expected an error without ids or --url")
	}
	if _, err := execute(t, "compare", "a", "b", "--url", "example.com", "--config", cfgPath); err == nil {
		t.Error("expected an error with both ids and --url")
	}
}

func TestLocalBase(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		":8000":          "http://127.0.0.1:8000/api/v1",
		"localhost:9000": "http://localhost:9000/api/v1",
	}
	for addr, want := range tests {
		if got := localBase(addr); got != want {
			t.Errorf("localBase(%q) = %q, want %q", addr, got, want)
		}
	}
}
