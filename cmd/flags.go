package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckhand/internal/flags"
)

var flagsResetAll bool

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Inspect and override feature flags",
	Long: `List feature flags and set or clear per-install overrides. Overrides
persist in settings and take precedence over environment overrides and
built-in defaults. Debug-only flags cannot be changed in release builds.

Examples:
  deckhand flags list
  deckhand flags enable fuzzy-search
  deckhand flags disable task-sync
  deckhand flags reset fuzzy-search
  deckhand flags reset --all`,
}

var flagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all feature flags with their effective values",
	Args:  cobra.NoArgs,
	RunE:  runFlagsList,
}

var flagsEnableCmd = &cobra.Command{
	Use:   "enable <flag>",
	Short: "Enable a feature flag for this install",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFlag(cmd, args[0], true)
	},
}

var flagsDisableCmd = &cobra.Command{
	Use:   "disable <flag>",
	Short: "Disable a feature flag for this install",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFlag(cmd, args[0], false)
	},
}

var flagsResetCmd = &cobra.Command{
	Use:   "reset [flag]",
	Short: "Clear flag overrides and return to environment defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFlagsReset,
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	flagsCmd.AddCommand(flagsListCmd)
	flagsCmd.AddCommand(flagsEnableCmd)
	flagsCmd.AddCommand(flagsDisableCmd)
	flagsCmd.AddCommand(flagsResetCmd)

	flagsResetCmd.Flags().BoolVar(&flagsResetAll, "all", false, "Clear every persisted flag override")
}

func runFlagsList(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	newRenderer(cmd).FlagTable(core.Flags.All())
	return nil
}

func setFlag(cmd *cobra.Command, id string, value bool) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if !core.Flags.SetEnabled(flags.FlagID(id), value) {
		return flagRejectedError(id)
	}

	word := "disabled"
	if value {
		word = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Flag %s %s\n", id, word)
	return nil
}

func runFlagsReset(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	out := cmd.OutOrStdout()
	switch {
	case flagsResetAll:
		core.Flags.ResetAll()
		fmt.Fprintln(out, "All flag overrides cleared")
	case len(args) == 1:
		if !core.Flags.Reset(flags.FlagID(args[0])) {
			return flagRejectedError(args[0])
		}
		fmt.Fprintf(out, "Flag %s reset to its default\n", args[0])
	default:
		return fmt.Errorf("specify a flag to reset, or --all")
	}
	return nil
}

// flagRejectedError distinguishes an unknown flag from a debug-only flag in
// a release build; the manager reports both as a plain false.
func flagRejectedError(id string) error {
	if _, ok := flags.Lookup(flags.FlagID(id)); ok {
		return fmt.Errorf("flag %s is debug-only and cannot be changed in release builds", id)
	}
	return fmt.Errorf("unknown flag %q", id)
}
