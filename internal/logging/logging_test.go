package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_LevelIsAdjustable(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	logger, level, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	level.SetLevel(zapcore.InfoLevel)
	logger.Info("shown")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info logged at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info not logged after lowering level")
	}
}

func TestNew_Rejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	if _, _, err := New(cfg); err == nil {
		t.Error("expected error for unknown format")
	}
	cfg = DefaultConfig()
	cfg.Level = "verbose"
	if _, _, err := New(cfg); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbgfront.log")
	cfg := DefaultConfig()
	cfg.Output = &bytes.Buffer{}
	cfg.File = path
	cfg.Format = "json"

	logger, _, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("to file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"to file"`) {
		t.Errorf("log file = %s", data)
	}
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.txt")
	w := OpenLogFile(path, DefaultRotateOptions())
	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "hello\n" {
		t.Errorf("file = %q", data)
	}
}
