package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected LogLevel
	}{
		{"debug", "debug", LevelDebug},
		{"info", "info", LevelInfo},
		{"warn", "warn", LevelWarn},
		{"warning alias", "warning", LevelWarn},
		{"error", "error", LevelError},
		{"mixed case", "DeBuG", LevelDebug},
		{"unknown defaults to info", "trace", LevelInfo},
		{"empty defaults to info", "", LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLevel(tc.input); got != tc.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitAndLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("Test", "debug message should be suppressed")
	Info("Test", "info message %d", 42)

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("Debug output should be filtered at info level, got: %s", out)
	}
	if !strings.Contains(out, "info message 42") {
		t.Errorf("Info output missing, got: %s", out)
	}
	if !strings.Contains(out, "subsystem=Test") {
		t.Errorf("Expected subsystem attribute, got: %s", out)
	}
}

func TestErrorIncludesErrAttribute(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("Test", errors.New("boom"), "operation failed")

	out := buf.String()
	if !strings.Contains(out, "operation failed") || !strings.Contains(out, "boom") {
		t.Errorf("Expected message and error in output, got: %s", out)
	}
}

func TestTruncateSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", "(unset)"},
		{"short", "abc", "abc..."},
		{"long", "ABcdefghijklmnop", "ABcde..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateSecret(tc.input); got != tc.expected {
				t.Errorf("TruncateSecret(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
