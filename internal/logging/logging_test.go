package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("hidden")
	logger.Info("document processed")
	logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if entry["msg"] != "document processed" {
		t.Errorf("Unexpected msg: %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("Expected ts field")
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "debug", Format: "console"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("scan started")
	logger.Sync()

	if !strings.Contains(buf.String(), "scan started") {
		t.Errorf("Expected message in output, got %q", buf.String())
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("Expected error for invalid level")
	}
}
