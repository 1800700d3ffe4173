package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileOutputLevels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decode.log")

	log := NewWithFileConfig("warn", FileConfig{Path: path, MaxSizeMB: 1}, false)
	log.Info("tile decoded", zap.String("tile", "1-0"))
	log.Warn("attribute buffer truncated", zap.String("attribute", "uvRegion"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "tile decoded") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(content, "attribute buffer truncated") || !strings.Contains(content, `"attribute":"uvRegion"`) {
		t.Errorf("warn entry missing from log: %s", content)
	}
}

func TestNoOutputIsNop(t *testing.T) {
	log := NewWithFileConfig("debug", FileConfig{}, false)
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger without outputs")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/i3s.log")
	if cfg.Path != "/tmp/i3s.log" || cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 || !cfg.Compress {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
