package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"deckhand/internal/appstate"
	"deckhand/internal/render"
)

var syncQuiet bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local task cache",
	Long: `Fetch the full task collection from the active environment and replace
the local cache with it. Requires a signed-in session and the task-sync
feature flag.

Examples:
  deckhand sync
  deckhand sync --quiet`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncQuiet, "quiet", false, "No spinner, summary only")
}

func runSync(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Sessions.Restore(); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	switch core.State.CurrentKind() {
	case appstate.KindUnauthenticated:
		return fmt.Errorf("not signed in; run 'deckhand auth login' first")
	case appstate.KindLocked:
		code, err := promptPassword("Passcode: ")
		if err != nil {
			return err
		}
		if err := core.Sessions.Unlock(code); err != nil {
			return err
		}
	}

	var s *spinner.Spinner
	if !syncQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Syncing tasks..."
		s.Start()
	}

	summary, err := core.Syncer.Run(cmd.Context())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	newRenderer(cmd).KeyValues([]render.KV{
		{Key: "Tasks", Value: strconv.Itoa(summary.Total)},
		{Key: "Pages", Value: strconv.Itoa(summary.Pages)},
		{Key: "Duration", Value: summary.Duration.Round(time.Millisecond).String()},
	})
	return nil
}
