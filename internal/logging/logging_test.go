package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandler_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, "production", slog.LevelInfo))
	log.Debug("hidden")
	log.Info("lead_event", "event", "lead_created")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not a single JSON line: %q", buf.String())
	}
	if line["msg"] != "lead_event" || line["event"] != "lead_created" {
		t.Errorf("line = %v", line)
	}
}

func TestNewHandler_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "development", slog.LevelInfo)).Info("otp_event", "event", "otp_requested")
	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "otp_event") {
		t.Errorf("output = %q", out)
	}
}
