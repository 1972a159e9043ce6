package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckhand/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the deckhand version along with the commit, build date and build mode.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "deckhand version %s\n", GetVersion())
			fmt.Fprintf(out, "  commit: %s\n", buildinfo.Commit())
			fmt.Fprintf(out, "  built:  %s\n", buildinfo.Date())
			fmt.Fprintf(out, "  mode:   %s\n", buildinfo.Mode())
		},
	}
}
