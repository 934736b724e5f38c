package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetTraceEnabled(false)
	})
	return &buf
}

func TestTraceIsGated(t *testing.T) {
	buf := capture(t)
	Trace("quiet", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output with tracing disabled, got %q", buf.String())
	}

	SetTraceEnabled(true)
	if !TraceEnabled() {
		t.Fatalf("expected tracing enabled")
	}
	Trace("session.open", map[string]interface{}{"id": 3})

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("trace entry is not JSON: %v", err)
	}
	if entry["event"] != "session.open" {
		t.Fatalf("unexpected event %v", entry["event"])
	}
	payload, ok := entry["payload"].(map[string]interface{})
	if !ok || payload["id"] != 3.0 {
		t.Fatalf("unexpected payload %v", entry["payload"])
	}
}

func TestErrorIgnoresNil(t *testing.T) {
	buf := capture(t)
	Error(nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing logged for nil error")
	}
	Error(errors.New("listen failed"))
	if !strings.Contains(buf.String(), "listen failed") {
		t.Fatalf("expected error message, got %q", buf.String())
	}
}

func TestConfigureCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agadir.log")
	Configure(path)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	if Path() != path {
		t.Fatalf("expected path %q, got %q", path, Path())
	}
	Logger().Info().Msg("hello")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected entry in log file, got %q", data)
	}
}
