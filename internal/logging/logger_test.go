package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "json", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.WithField("file", "chat.txt").Info("parsed")
	log.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "parsed" || entry["file"] != "chat.txt" || entry["level"] != "info" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "text", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug message missing from output: %q", buf.String())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", "text", &bytes.Buffer{}); err == nil {
		t.Error("New() expected error for invalid level")
	}
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("New() expected error for invalid format")
	}
}
