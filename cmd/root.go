package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"deckhand/internal/app"
	"deckhand/internal/render"
	"deckhand/internal/session"
	"deckhand/pkg/logging"
)

// Exit codes returned by the CLI for scripting.
const (
	// ExitCodeSuccess indicates successful execution
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates rejected credentials or a failed unlock
	ExitCodeAuthFailed = 2
)

var (
	rootConfigDir string
	rootDebug     bool
	rootNoColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "deckhand",
	Short: "Task client core engine",
	Long: `deckhand is the engine behind the deckhand task client: the application
state machine, feature flags and environments, the local task cache with
search and filtering, and the session and sync flows built on top of them.

The desktop frontend embeds this engine; the CLI exposes the same engine
for operating and inspecting an installation from the command line.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version string.
func GetVersion() string {
	return rootCmd.Version
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen
// once.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "deckhand version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to a process exit code so scripts can tell
// authentication failures apart from everything else.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if errors.Is(err, session.ErrInvalidCredentials) ||
		errors.Is(err, session.ErrPasscodeMismatch) ||
		errors.Is(err, session.ErrNoPasscode) {
		return ExitCodeAuthFailed
	}
	return ExitCodeError
}

// bootCore loads the configuration and constructs the application core the
// same way the desktop shell does at launch. The caller owns the returned
// core and must Close it.
func bootCore() (*app.Core, error) {
	cfg, err := app.LoadConfig(rootConfigDir)
	if err != nil {
		return nil, err
	}
	if rootDebug {
		cfg.LogLevel = logging.LevelDebug
	}
	return app.NewCore(cfg)
}

func newRenderer(cmd *cobra.Command) *render.Renderer {
	return render.New(cmd.OutOrStdout(), !rootNoColor)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigDir, "config-dir", "", "Configuration directory (default: OS config dir + /deckhand)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Force debug level logging")
	rootCmd.PersistentFlags().BoolVar(&rootNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
