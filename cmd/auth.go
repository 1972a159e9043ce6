package cmd

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"deckhand/internal/app"
	"deckhand/internal/appstate"
	"deckhand/internal/session"
)

var (
	authEmail    string
	authPassword string
	authPasscode string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the local session",
	Long: `Sign in and out, lock and unlock the session, and manage the lock
passcode. Sessions persist on disk, so a sign-in survives across commands
until it expires or is signed out.

A session with a passcode always starts locked; unlock it with the
passcode before session-bound operations.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist a session",
	Long: `Authenticate against the active environment and persist the resulting
session. Prompts for the email and password unless given as flags.

Examples:
  deckhand auth login
  deckhand auth login --email pat@example.com`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and delete the persisted session",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the session",
	Long: `Lock the session so the passcode is required on the next start. Locking
needs a passcode configured with 'deckhand auth passcode set'.`,
	Args: cobra.NoArgs,
	RunE: runAuthLock,
}

var authUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Verify the passcode against the locked session",
	Args:  cobra.NoArgs,
	RunE:  runAuthUnlock,
}

var authPasscodeCmd = &cobra.Command{
	Use:   "passcode",
	Short: "Manage the lock passcode",
}

var authPasscodeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the lock passcode for the session",
	Args:  cobra.NoArgs,
	RunE:  runAuthPasscodeSet,
}

var authPasscodeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the lock passcode from the session",
	Args:  cobra.NoArgs,
	RunE:  runAuthPasscodeClear,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authLockCmd)
	authCmd.AddCommand(authUnlockCmd)
	authCmd.AddCommand(authPasscodeCmd)
	authPasscodeCmd.AddCommand(authPasscodeSetCmd)
	authPasscodeCmd.AddCommand(authPasscodeClearCmd)

	authLoginCmd.Flags().StringVar(&authEmail, "email", "", "Account email (prompted when omitted)")
	authLoginCmd.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
	authUnlockCmd.Flags().StringVar(&authPasscode, "passcode", "", "Lock passcode (prompted when omitted)")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	restored, err := core.Sessions.Restore()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not restore session: %v\n", err)
	}
	if restored && core.State.CurrentKind() == appstate.KindAuthenticated {
		user, _ := appstate.CurrentUser(core.State.Current())
		fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s. Run 'deckhand auth logout' to switch accounts.\n", user.Email)
		return nil
	}

	email := authEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := authPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	user, err := core.Sessions.Login(cmd.Context(), session.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.DisplayName, user.Email)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	// The restore result does not matter here; logout deletes whatever is
	// stored either way.
	_, _ = core.Sessions.Restore()
	if err := core.Sessions.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runAuthLock(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Sessions.Restore(); err != nil {
		return err
	}
	switch core.State.CurrentKind() {
	case appstate.KindLocked:
		fmt.Fprintln(cmd.OutOrStdout(), "Session is already locked")
		return nil
	case appstate.KindAuthenticated:
	default:
		return fmt.Errorf("no session to lock (state: %s)", core.State.CurrentKind())
	}

	if err := core.Sessions.Lock(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session locked")
	return nil
}

func runAuthUnlock(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Sessions.Restore(); err != nil {
		return err
	}
	if core.State.CurrentKind() != appstate.KindLocked {
		return fmt.Errorf("session is not locked (state: %s)", core.State.CurrentKind())
	}

	code := authPasscode
	if code == "" {
		if code, err = promptPassword("Passcode: "); err != nil {
			return err
		}
	}
	if err := core.Sessions.Unlock(code); err != nil {
		return err
	}
	user, _ := appstate.CurrentUser(core.State.Current())
	fmt.Fprintf(cmd.OutOrStdout(), "Passcode accepted, session for %s unlocked\n", user.Email)
	return nil
}

func runAuthPasscodeSet(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if err := restoreUnlocked(core); err != nil {
		return err
	}

	code, err := promptPassword("New passcode: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm passcode: ")
	if err != nil {
		return err
	}
	if code != confirm {
		return fmt.Errorf("passcodes do not match")
	}

	if err := core.Sessions.SetPasscode(code); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Passcode set. The session now locks when idle and starts locked.")
	return nil
}

func runAuthPasscodeClear(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if err := restoreUnlocked(core); err != nil {
		return err
	}

	if err := core.Sessions.ClearPasscode(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Passcode cleared")
	return nil
}

// restoreUnlocked restores the persisted session and, when it comes back
// locked, asks for the current passcode. Guards the passcode subcommands so
// the passcode cannot be changed on a locked session.
func restoreUnlocked(core *app.Core) error {
	if _, err := core.Sessions.Restore(); err != nil {
		return err
	}
	switch core.State.CurrentKind() {
	case appstate.KindAuthenticated:
		return nil
	case appstate.KindLocked:
		code, err := promptPassword("Current passcode: ")
		if err != nil {
			return err
		}
		return core.Sessions.Unlock(code)
	default:
		return fmt.Errorf("no session (state: %s); run 'deckhand auth login' first", core.State.CurrentKind())
	}
}

func promptLine(prompt string) (string, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	rl, err := readline.New("")
	if err != nil {
		return "", err
	}
	defer rl.Close()

	pw, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
