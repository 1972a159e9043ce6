package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"deckhand/internal/app"
	"deckhand/internal/appstate"
	"deckhand/internal/buildinfo"
	"deckhand/internal/render"
)

var statusHistory int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show application state, environment and feature flags",
	Long: `Show the current application state, the session identity, the active
environment, connectivity, the cache size and every feature flag with the
source its value comes from.

Examples:
  # Current state and flags
  deckhand status

  # Include the last ten state transitions
  deckhand status --history 10`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusHistory, "history", 0, "Also show the last N state transitions")
}

func runStatus(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Sessions.Restore(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not restore session: %v\n", err)
	}

	out := cmd.OutOrStdout()
	r := newRenderer(cmd)
	if err := printStatus(out, r, core); err != nil {
		return err
	}

	if statusHistory > 0 {
		history := core.State.History()
		if len(history) > statusHistory {
			history = history[len(history)-statusHistory:]
		}
		fmt.Fprintln(out)
		r.HistoryTable(history)
	}
	return nil
}

// printStatus writes the state summary and flag table. Shared with the
// console's status command.
func printStatus(out io.Writer, r *render.Renderer, core *app.Core) error {
	cached, err := core.Cache.Count()
	if err != nil {
		return fmt.Errorf("counting cached tasks: %w", err)
	}

	user := "-"
	if u, ok := appstate.CurrentUser(core.State.Current()); ok {
		user = fmt.Sprintf("%s <%s>", u.DisplayName, u.Email)
	}

	connectivity := "offline"
	if core.Monitor.Online() {
		connectivity = "online"
	}

	env := core.Environments.Current()
	r.KeyValues([]render.KV{
		{Key: "State", Value: string(core.State.CurrentKind())},
		{Key: "Session", Value: user},
		{Key: "Environment", Value: string(env.ID)},
		{Key: "Base URL", Value: env.BaseURL},
		{Key: "Connectivity", Value: connectivity},
		{Key: "Cached tasks", Value: strconv.Itoa(cached)},
		{Key: "Build", Value: fmt.Sprintf("%s (%s)", buildinfo.Version(), buildinfo.Mode())},
	})

	fmt.Fprintln(out)
	r.FlagTable(core.Flags.All())
	return nil
}
