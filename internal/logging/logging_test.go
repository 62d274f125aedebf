package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("testcomp").Info("hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["component"] != "testcomp" {
		t.Errorf("Expected component attribute, got %v", entry["component"])
	}
	if entry["msg"] != "hello" {
		t.Errorf("Expected message, got %v", entry["msg"])
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	log := New("quiet")
	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("Info record should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("Warn record should pass at warn level")
	}
}
