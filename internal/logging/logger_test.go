package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Str("feed", "golang").Msg("updated")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected debug message to be filtered")
	}
	if !strings.Contains(out, `"feed":"golang"`) || !strings.Contains(out, `"message":"updated"`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "console", Output: &buf})

	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("expected info message to be filtered")
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("expected warning in output, got %q", out)
	}
}
