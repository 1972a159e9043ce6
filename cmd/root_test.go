package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"deckhand/internal/session"
)

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion("1.2.3-test")

	if rootCmd.Version != "1.2.3-test" {
		t.Errorf("Expected version to be 1.2.3-test, got %s", rootCmd.Version)
	}
	if GetVersion() != "1.2.3-test" {
		t.Errorf("Expected GetVersion to return 1.2.3-test, got %s", GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "deckhand" {
		t.Errorf("Expected Use to be 'deckhand', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "deckhand version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})

	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}
	if buf.String() != "deckhand version 1.0.0\n" {
		t.Errorf("Expected version output %q, got %q", "deckhand version 1.0.0\n", buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	expectedCommands := []string{
		"status", "auth", "flags", "env", "tasks", "sync",
		"agent", "console", "version", "self-update",
	}

	foundCommands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %q to be registered", expected)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config-dir", "debug", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %q to be registered", name)
		}
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: ExitCodeSuccess,
		},
		{
			name:     "generic error",
			err:      errors.New("something broke"),
			expected: ExitCodeError,
		},
		{
			name:     "invalid credentials",
			err:      session.ErrInvalidCredentials,
			expected: ExitCodeAuthFailed,
		},
		{
			name:     "wrapped passcode mismatch",
			err:      fmt.Errorf("unlocking: %w", session.ErrPasscodeMismatch),
			expected: ExitCodeAuthFailed,
		},
		{
			name:     "no passcode configured",
			err:      session.ErrNoPasscode,
			expected: ExitCodeAuthFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.expected {
				t.Errorf("getExitCode(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}
