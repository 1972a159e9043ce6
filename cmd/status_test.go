package cmd

import (
	"strings"
	"testing"
)

func TestStatusCommand(t *testing.T) {
	if statusCmd.Use != "status" {
		t.Errorf("Expected Use to be 'status', got %s", statusCmd.Use)
	}
	if statusCmd.RunE == nil {
		t.Error("Expected RunE function to be set")
	}
	if statusCmd.Flags().Lookup("history") == nil {
		t.Error("Expected --history flag to be registered")
	}
}

func TestRunStatusWithoutSession(t *testing.T) {
	useTestConfigDir(t)
	cmd, buf := newTestCommand(t)

	if err := runStatus(cmd, nil); err != nil {
		t.Fatalf("runStatus failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"State", "unauthenticated", "Environment", "mock", "Cached tasks", "0"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected status output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestRunStatusShowsSession(t *testing.T) {
	useTestConfigDir(t)
	loginTestSession(t, "pat@example.com")
	cmd, buf := newTestCommand(t)

	if err := runStatus(cmd, nil); err != nil {
		t.Fatalf("runStatus failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "authenticated") {
		t.Errorf("Expected status to report an authenticated session, got:\n%s", output)
	}
	if !strings.Contains(output, "pat@example.com") {
		t.Errorf("Expected status to name the session user, got:\n%s", output)
	}
}

func TestRunStatusWithHistory(t *testing.T) {
	useTestConfigDir(t)
	loginTestSession(t, "pat@example.com")

	originalHistory := statusHistory
	statusHistory = 5
	defer func() { statusHistory = originalHistory }()

	cmd, buf := newTestCommand(t)
	if err := runStatus(cmd, nil); err != nil {
		t.Fatalf("runStatus failed: %v", err)
	}

	// Restoring the persisted session transitions launching ->
	// authenticated, which the history table should show.
	output := buf.String()
	if !strings.Contains(output, "launching") {
		t.Errorf("Expected history output to contain the launching state, got:\n%s", output)
	}
}
