package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/marketplace"
)

var (
	pluginListRefresh bool
	pluginListJSON    bool
)

func init() {
	pluginListCmd.Flags().BoolVar(&pluginListRefresh, "refresh", false, "re-read marketplace.json")
	pluginListCmd.Flags().BoolVar(&pluginListJSON, "json", false, "output in JSON format")
	pluginCmd.AddCommand(pluginListCmd)
}

var pluginListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List marketplace plugins",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, _, err := loadMarketplace()
		if err != nil {
			return err
		}
		plugins, err := catalog.Plugins(cmd.Context(), pluginListRefresh)
		if err != nil {
			return pluginError(err)
		}
		return writePluginList(cmd.OutOrStdout(), plugins)
	},
}

func writePluginList(w io.Writer, plugins []marketplace.Plugin) error {
	if pluginListJSON {
		if plugins == nil {
			plugins = []marketplace.Plugin{}
		}
		return writeJSON(w, plugins)
	}

	if len(plugins) == 0 {
		fmt.Fprintln(w, "No plugins found.")
		return nil
	}

	t := newTable(w, "NAME", "VERSION", "CATEGORY", "DESCRIPTION")
	for _, p := range plugins {
		version := p.Version
		if version == "" {
			version = "-"
		}
		t.AppendRow([]any{p.Name, version, p.Category, firstLine(p.Description)})
	}
	t.Render()
	return nil
}
