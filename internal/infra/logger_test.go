package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		appEnv   string
		override string
		want     zerolog.Level
	}{
		{name: "development default", appEnv: "development", want: zerolog.DebugLevel},
		{name: "production default", appEnv: "production", want: zerolog.InfoLevel},
		{name: "override wins", appEnv: "development", override: " WARN ", want: zerolog.WarnLevel},
		{name: "garbage override ignored", appEnv: "production", override: "loud", want: zerolog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LogLevel(tc.appEnv, tc.override); got != tc.want {
				t.Fatalf("LogLevel(%q, %q) = %s, want %s", tc.appEnv, tc.override, got, tc.want)
			}
		})
	}
}

func TestNewLoggerWritesTaggedJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{AppEnv: "production", Component: "api", Level: "warn", Out: &buf})

	logger.Info().Msg("dropped")
	logger.Warn().Str("provider", "gemini").Msg("fallback")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "api" || entry["env"] != "production" || entry["message"] != "fallback" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewLoggerDevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{AppEnv: "development", Component: "mealplan", Out: &buf})
	logger.Debug().Msg("ready")

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("ready")) || !bytes.Contains(buf.Bytes(), []byte("component=mealplan")) {
		t.Fatalf("unexpected console output: %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("development output should not be JSON: %q", out)
	}
}
