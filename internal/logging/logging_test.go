package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/raysh454/seoaudit/internal/logging"
)

func TestWriterLogger_JSONLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "root", false)

	child := logger.With(logging.Field{Key: "component", Value: "poller"}, logging.Field{Key: "job_id", Value: "j1"})
	child.Info("tick", logging.Field{Key: "attempt", Value: 2})

	var entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}
	if entry.Level != "info" || entry.Msg != "tick" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Component != "poller" {
		t.Errorf("expected component poller, got %q", entry.Component)
	}
	if entry.Fields["job_id"] != "j1" {
		t.Errorf("expected persistent job_id field, got %v", entry.Fields)
	}
	if entry.Fields["attempt"] != float64(2) {
		t.Errorf("expected attempt=2, got %v", entry.Fields["attempt"])
	}
}

func TestWriterLogger_DebugSuppressed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "root", false)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output for debug, got %q", buf.String())
	}

	verbose := logging.NewWriterLogger(&buf, "root", true)
	verbose.Debug("shown")
	if !strings.Contains(buf.String(), `"shown"`) {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestLogrusLogger_TextOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogrusLogger(&buf, "warn")

	logger.Info("dropped")
	logger.With(logging.Field{Key: "job_id", Value: "abc"}).Warn("poll failed")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "poll failed") || !strings.Contains(out, "job_id=abc") {
		t.Errorf("expected warn line with field, got %q", out)
	}
}
