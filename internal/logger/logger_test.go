package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	Info("user created", "uid", "alice")

	out := buf.String()
	if !strings.Contains(out, "user created") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "uid=alice") {
		t.Errorf("output missing attribute: %q", out)
	}
}

func TestInitWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")

	Info("counter advanced", "counter", "uidNumber", "value", 1001)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "counter advanced" {
		t.Errorf("msg = %v, want counter advanced", entry["msg"])
	}
	if entry["counter"] != "uidNumber" {
		t.Errorf("counter = %v, want uidNumber", entry["counter"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text")

	Debug("too quiet")
	Info("still too quiet")
	Warn("loud enough")

	out := buf.String()
	if strings.Contains(out, "too quiet") {
		t.Errorf("sub-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "loud enough") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	if err := Init(Config{Level: "LOUD"}); err == nil {
		t.Error("Init with bad level = nil, want error")
	}
}

func TestInitRejectsBadFormat(t *testing.T) {
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Error("Init with bad format = nil, want error")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	With("component", "allocator").Info("attached")

	out := buf.String()
	if !strings.Contains(out, "component=allocator") {
		t.Errorf("output missing bound attribute: %q", out)
	}
}
