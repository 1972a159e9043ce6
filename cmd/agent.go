package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"deckhand/internal/app"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the long-lived background agent",
	Long: `Run deckhand as a long-lived background process. The agent restores the
persisted session, monitors connectivity, locks idle sessions, picks up
external edits to the settings file and logs every state change until it
is interrupted.

Readiness and shutdown are reported over sd_notify, so the agent can run
as a systemd service with Type=notify.

Examples:
  deckhand agent
  deckhand agent --config-dir /etc/deckhand --debug`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return app.NewAgent(core).Run(ctx)
}
