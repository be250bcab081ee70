package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/errors"
)

func TestSetupLogging_QuietVerboseConflict(t *testing.T) {
	quiet = true
	verbosity = 2
	defer func() {
		quiet = false
		verbosity = 0
	}()

	cmd := &cobra.Command{}
	cmd.SetErr(&bytes.Buffer{})

	err := setupLogging(cmd)
	if err == nil {
		t.Fatal("expected error for --quiet with --verbose")
	}
	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("expected ExitError, got %T", err)
	}
}

func TestSetupLogging_JSONFormat(t *testing.T) {
	logFormat = "json"
	defer func() { logFormat = "text" }()

	cmd := &cobra.Command{}
	cmd.SetErr(&bytes.Buffer{})

	if err := setupLogging(cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Context() == nil {
		t.Error("setupLogging should attach a logger context")
	}
}

func TestCheckConfig(t *testing.T) {
	// Load failures surface on ordinary commands.
	configLoadErr = errors.New("boom")
	defer func() { configLoadErr = nil }()

	if err := checkConfig(&cobra.Command{Use: "list"}, nil); err == nil {
		t.Error("expected config load error to propagate")
	}

	// But not on help or version.
	if err := checkConfig(&cobra.Command{Use: "version"}, nil); err != nil {
		t.Errorf("version should ignore config errors: %v", err)
	}
	if err := checkConfig(&cobra.Command{Use: "help"}, nil); err != nil {
		t.Errorf("help should ignore config errors: %v", err)
	}
}
