package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", false)
	defer InitWithWriter(&buf, "INFO", "text", false)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("debug message should be filtered at WARN level")
	}
	if strings.Contains(out, "info message") {
		t.Errorf("info message should be filtered at WARN level")
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("warn message missing from output: %q", out)
	}
	if !strings.Contains(out, "error message") {
		t.Errorf("error message missing from output: %q", out)
	}
}

func TestStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	Info("operation complete", KeyStore, "sessions", KeyOp, "get", KeyLockID, 42)

	out := buf.String()
	for _, want := range []string{"operation complete", "store=sessions", "op=get", "lock_id=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)
	defer SetFormat("text")

	Info("hello", KeyStore, "s1")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"store":"s1"`) {
		t.Errorf("expected store field in JSON output, got %q", out)
	}
}

func TestInvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	SetLevel("NOISE")

	Info("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Errorf("invalid level should not change filtering")
	}
}

func TestLogContext(t *testing.T) {
	lc := NewLogContext("10.0.0.1").WithStore("sessions").WithOperation("put")
	if lc.ClientIP != "10.0.0.1" || lc.Store != "sessions" || lc.Operation != "put" {
		t.Fatalf("unexpected context: %+v", lc)
	}

	clone := lc.Clone()
	clone.Store = "other"
	if lc.Store != "sessions" {
		t.Errorf("Clone must not alias the original")
	}
}
