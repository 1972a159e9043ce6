package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"deckhand/internal/app"
	"deckhand/internal/flags"
	"deckhand/internal/session"
)

// useTestConfigDir points the CLI at a throwaway config directory and
// restores the previous value when the test ends.
func useTestConfigDir(t *testing.T) string {
	t.Helper()

	original := rootConfigDir
	dir := t.TempDir()
	rootConfigDir = dir
	t.Cleanup(func() { rootConfigDir = original })
	return dir
}

// newTestCommand returns a bare command with captured output for driving
// RunE functions directly.
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}

// bootTestCore builds a core against the active test config directory,
// closing it when the test ends.
func bootTestCore(t *testing.T) *app.Core {
	t.Helper()

	core, err := bootCore()
	if err != nil {
		t.Fatalf("booting core: %v", err)
	}
	t.Cleanup(func() {
		if err := core.Close(); err != nil {
			t.Errorf("closing core: %v", err)
		}
	})
	return core
}

// findResolved pulls one flag out of a resolved listing.
func findResolved(t *testing.T, resolved []flags.Resolved, id flags.FlagID) flags.Resolved {
	t.Helper()

	for _, r := range resolved {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("flag %s not in listing", id)
	return flags.Resolved{}
}

// loginTestSession signs a user in against the active test config directory
// so a later command can restore the session.
func loginTestSession(t *testing.T, email string) {
	t.Helper()

	cfg, err := app.LoadConfig(rootConfigDir)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	core, err := app.NewCore(cfg)
	if err != nil {
		t.Fatalf("booting core: %v", err)
	}
	defer core.Close()

	creds := session.Credentials{Email: email, Password: "hunter22"}
	if _, err := core.Sessions.Login(context.Background(), creds); err != nil {
		t.Fatalf("logging in: %v", err)
	}
}
