package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckhand/internal/environment"
)

var envSwitchApplyOverrides bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect and switch service environments",
	Long: `Show the available service environments and switch the active one.
Switching persists across commands. Debug-only environments such as mock
and staging are hidden in release builds.

Examples:
  deckhand env show
  deckhand env switch staging
  deckhand env switch production --apply-overrides
  deckhand env reset`,
}

var envShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List available environments and mark the active one",
	Args:  cobra.NoArgs,
	RunE:  runEnvShow,
}

var envSwitchCmd = &cobra.Command{
	Use:   "switch <environment>",
	Short: "Switch the active environment",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvSwitch,
}

var envResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return to the default environment for this build",
	Args:  cobra.NoArgs,
	RunE:  runEnvReset,
}

var envApplyOverridesCmd = &cobra.Command{
	Use:   "apply-overrides",
	Short: "Apply the active environment's feature flag overrides",
	Long: `Write the active environment's feature flag overrides into settings, as
if the environment had just been switched to. Useful after flag edits that
should be rolled back to the environment's intent.`,
	Args: cobra.NoArgs,
	RunE: runEnvApplyOverrides,
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envSwitchCmd)
	envCmd.AddCommand(envResetCmd)
	envCmd.AddCommand(envApplyOverridesCmd)

	envSwitchCmd.Flags().BoolVar(&envSwitchApplyOverrides, "apply-overrides", false, "Also apply the target environment's flag overrides")
}

func runEnvShow(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	newRenderer(cmd).EnvironmentTable(core.Environments.Available(), core.Environments.CurrentID())
	return nil
}

func runEnvSwitch(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	id := environment.ID(args[0])
	if !core.Environments.SwitchTo(id) {
		return fmt.Errorf("environment %q is unknown or not available in this build", args[0])
	}
	if envSwitchApplyOverrides {
		core.Environments.ApplyFeatureOverrides()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Switched to environment %s\n", id)
	fmt.Fprintln(cmd.OutOrStdout(), "A running agent keeps its current service connections until restarted.")
	return nil
}

func runEnvReset(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	core.Environments.ResetToDefault()
	fmt.Fprintf(cmd.OutOrStdout(), "Environment reset to %s\n", core.Environments.CurrentID())
	return nil
}

func runEnvApplyOverrides(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	core.Environments.ApplyFeatureOverrides()
	fmt.Fprintf(cmd.OutOrStdout(), "Applied feature overrides for %s\n", core.Environments.CurrentID())
	return nil
}
