package utils

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2018, 12, 9, 14, 30, 0, 0, time.UTC)
	for _, value := range []string{"12/09/2018 14:30", "2018-12-09T14:30:00Z", "2018-12-09 14:30"} {
		got, err := ParseTimestamp(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q = %v, want %v", value, got, want)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	if _, err := ParseTimestamp(""); err == nil {
		t.Fatalf("expected error for empty value")
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error for unparseable value")
	}
}

func TestHoursBetweenKeepsSign(t *testing.T) {
	start := time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(50 * time.Hour)
	if got := HoursBetween(start, end); got != 50 {
		t.Fatalf("expected 50 hours, got %v", got)
	}
	if got := HoursBetween(end, start); got != -50 {
		t.Fatalf("expected -50 hours, got %v", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := NewAppError("engine.Score", "group Polisher/Pump", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to match base")
	}
	if !strings.Contains(err.Error(), "Polisher/Pump") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestOpOf(t *testing.T) {
	err := fmt.Errorf("observation 3: %w", NewAppError("ingest.observations", "line 4", errors.New("bad index")))
	if got := OpOf(err); got != "ingest.observations" {
		t.Fatalf("unexpected op: %q", got)
	}
	if got := OpOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty op, got %q", got)
	}
}

func TestNewLoggerToRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn", true)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("expected json warn line, got %s", out)
	}
}
