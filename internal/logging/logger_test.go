package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func parseEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log json %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerChildFieldsMergeWithCallFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New().SetOutput(buf).SetLevel(LevelDebug)

	weights := logger.WithField("metric", "weight")
	weights.Info("Weight saved", map[string]interface{}{"user_id": "u-1", "created": true})

	entries := parseEntries(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != "INFO" || entry.Message != "Weight saved" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
	if entry.Fields["metric"] != "weight" || entry.Fields["user_id"] != "u-1" || entry.Fields["created"] != true {
		t.Fatalf("expected child and call fields, got %v", entry.Fields)
	}
}

func TestLoggerCallFieldsOverrideChildFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New().SetOutput(buf).WithField("route", "/api/weights")

	logger.Warn("Validation failed", map[string]interface{}{"route": "/api/calories"})

	entries := parseEntries(t, buf)
	if entries[0].Fields["route"] != "/api/calories" {
		t.Fatalf("expected call field to win, got %v", entries[0].Fields["route"])
	}
}

func TestLoggerWithFieldDoesNotMutateParent(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := New().SetOutput(buf)
	_ = parent.WithField("friendship_id", "f-1")

	parent.Info("Friend request accepted")

	entries := parseEntries(t, buf)
	if entries[0].Fields != nil {
		t.Fatalf("expected parent entry without fields, got %v", entries[0].Fields)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New().SetOutput(buf).SetLevel(LevelError)

	logger.Info("Schema ready")
	logger.Warn("Redis disabled; auth rate limiting is off")
	if buf.Len() != 0 {
		t.Fatalf("expected info and warn to be filtered, got %s", buf.String())
	}

	logger.Error("Server error", map[string]interface{}{"error": "connection refused"})
	entries := parseEntries(t, buf)
	if len(entries) != 1 || entries[0].Fields["error"] != "connection refused" {
		t.Fatalf("expected error entry, got %+v", entries)
	}
}

func TestDefaultLoggerHelpers(t *testing.T) {
	saved := Default
	t.Cleanup(func() { Default = saved })

	buf := &bytes.Buffer{}
	Default = New().SetOutput(buf)
	SetDefaultLevel(LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("Rate limit counter slow")
	Error("Rate limit counter error")

	entries := parseEntries(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected warn and error only, got %+v", entries)
	}
	if entries[0].Level != LevelWarn.String() || entries[1].Level != LevelError.String() {
		t.Fatalf("unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
}
