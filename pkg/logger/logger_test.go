package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantLevel zerolog.Level
	}{
		{
			name:      "debug level",
			cfg:       &config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "info level",
			cfg:       &config.Config{Env: "production", LogLevel: "info", LogFormat: "json"},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "warn level console",
			cfg:       &config.Config{Env: "staging", LogLevel: "warn", LogFormat: "console"},
			wantLevel: zerolog.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.cfg)
			if log == nil {
				t.Fatal("Expected logger to be created")
			}
			if log.Level() != tt.wantLevel {
				t.Errorf("Expected level %v, got %v", tt.wantLevel, log.Level())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{" Trace ", zerolog.TraceLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	log.Warnf("cache size %d", 3)
	entry := decodeLine(t, &buf)
	if entry["message"] != "cache size 3" {
		t.Errorf("unexpected message: %v", entry["message"])
	}
	if entry["level"] != "warn" {
		t.Errorf("unexpected level: %v", entry["level"])
	}
}

func TestComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug").Component("liquidity")

	log.WithFields(map[string]interface{}{
		"signal_id": "EURUSD-1",
		"symbol":    "EURUSD",
	}).WithField("trap", "HIGH").Debug("trap detected")

	entry := decodeLine(t, &buf)
	if entry["component"] != "liquidity" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["signal_id"] != "EURUSD-1" || entry["symbol"] != "EURUSD" {
		t.Errorf("fields missing: %v", entry)
	}
	if entry["trap"] != "HIGH" {
		t.Errorf("trap = %v", entry["trap"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.WithError(errors.New("store unavailable")).Error("log result failed")

	entry := decodeLine(t, &buf)
	if entry["error"] != "store unavailable" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	// must not panic
	log.WithField("k", "v").Info("ignored")
	log.Errorf("ignored %d", 1)
}
