package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"deckhand/internal/app"
	"deckhand/internal/buildinfo"
	"deckhand/internal/flags"
	"deckhand/internal/settings"
	"deckhand/pkg/logging"
)

// githubRepoSlug is the GitHub repository to check for releases.
const githubRepoSlug = "deckhand-app/deckhand"

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update deckhand to the latest version",
		Long: `Check GitHub for the latest deckhand release and replace the current
binary if a newer version is available.

The command is gated by the self-update feature flag, so a deployment can
pin its binaries by disabling the flag in settings.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	// Reads the flag straight from settings instead of booting the full
	// core; replacing the binary must not depend on the task cache being
	// openable.
	cfg, err := app.LoadConfig(rootConfigDir)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, os.Stderr)

	store, err := settings.NewFileStore(cfg.SettingsPath)
	if err != nil {
		return err
	}
	if !flags.NewManager(store, buildinfo.IsDebug()).IsEnabled(flags.FlagSelfUpdate) {
		return fmt.Errorf("self-update is disabled by the %s flag", flags.FlagSelfUpdate)
	}

	currentVersion := GetVersion()
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version (current version: %q)", currentVersion)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Checking for updates..."
	s.Start()

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		s.Stop()
		return fmt.Errorf("creating updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(cmd.Context(), selfupdate.ParseSlug(githubRepoSlug))
	s.Stop()
	if err != nil {
		return fmt.Errorf("detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", githubRepoSlug)
	}

	out := cmd.OutOrStdout()
	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintf(out, "Current version %s is up to date\n", currentVersion)
		return nil
	}

	fmt.Fprintf(out, "Updating from %s to %s...\n", currentVersion, latest.Version())

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}

	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Downloading update..."
	s.Start()
	err = updater.UpdateTo(cmd.Context(), latest, exe)
	s.Stop()
	if err != nil {
		return fmt.Errorf("updating binary: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s (published %s)\n",
		latest.Version(), latest.PublishedAt.Format("2006-01-02"))
	if notes := latest.ReleaseNotes; notes != "" {
		fmt.Fprintf(out, "\nRelease notes:\n%s\n", notes)
	}
	return nil
}
