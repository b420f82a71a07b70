package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/marketplace"
)

var pluginUninstallJSON bool

func init() {
	pluginUninstallCmd.Flags().BoolVar(&pluginUninstallJSON, "json", false, "output in JSON format")
	pluginCmd.AddCommand(pluginUninstallCmd)
}

var pluginUninstallCmd = &cobra.Command{
	Use:     "uninstall <name> <component...>",
	Aliases: []string{"remove", "rm"},
	Short:   "Remove installed components of a plugin",
	Long: `Remove components recorded as installed from a plugin.

A file shared with another installed plugin stays in place until the
last plugin listing it is uninstalled.`,
	Example: `  pluginkit plugin uninstall review agent:code-reviewer mcp:github`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, installer, err := loadMarketplace()
		if err != nil {
			return err
		}
		return runPluginUninstall(cmd.Context(), cmd.OutOrStdout(), installer, args[0], args[1:])
	},
}

func runPluginUninstall(ctx context.Context, w io.Writer, installer *marketplace.Installer, name string, components []string) error {
	resp, err := installer.Uninstall(ctx, name, components)
	if err != nil {
		return pluginError(err)
	}

	if pluginUninstallJSON {
		if err := writeJSON(w, resp); err != nil {
			return err
		}
	} else {
		writeOutcome(w, "Uninstalled", resp.PluginName, resp.Uninstalled, resp.Failed)
	}

	if len(resp.Failed) > 0 {
		return errReported
	}
	return nil
}
