package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		logger, err := New("warn", dev)
		if err != nil {
			t.Fatalf("New(warn, %v) error: %v", dev, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("development=%v: info should be disabled at warn level", dev)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("development=%v: error should be enabled at warn level", dev)
		}
	}
}

func TestMust(t *testing.T) {
	if Must("debug", true) == nil {
		t.Fatal("Must returned nil")
	}
}
