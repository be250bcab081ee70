package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("backup created", "name", "backup_20250101_000000")

	out := buf.String()
	if !strings.Contains(out, "backup created") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "name=backup_20250101_000000") {
		t.Errorf("output missing attr: %q", out)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("pruned", "removed", 3)

	out := buf.String()
	if !strings.Contains(out, `"msg":"pruned"`) {
		t.Errorf("output not JSON: %q", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelWarn,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Errorf("info message leaked through warn filter: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v    int
		want slog.Level
	}{
		{0, slog.LevelInfo},
		{1, slog.LevelDebug},
		{2, LevelTrace},
		{5, LevelTrace},
		{-1, slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	// Must not panic and must be safe to use.
	logger.Error("discarded")
}

func TestContextRoundTrip(t *testing.T) {
	logger := NewDiscard()
	ctx := NewContext(t.Context(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}
	if got := FromContext(t.Context()); got == nil {
		t.Error("FromContext should fall back to slog.Default")
	}
}

func TestTeeHandler(t *testing.T) {
	var a, b bytes.Buffer
	tee := NewTeeHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)
	logger := slog.New(tee)

	logger.Info("mirrored")

	if !strings.Contains(a.String(), "mirrored") || !strings.Contains(b.String(), "mirrored") {
		t.Errorf("record not mirrored: a=%q b=%q", a.String(), b.String())
	}
}
