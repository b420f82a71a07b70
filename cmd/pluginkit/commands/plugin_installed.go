package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/marketplace"
)

var pluginInstalledJSON bool

func init() {
	pluginInstalledCmd.Flags().BoolVar(&pluginInstalledJSON, "json", false, "output in JSON format")
	pluginCmd.AddCommand(pluginInstalledCmd)
}

var pluginInstalledCmd = &cobra.Command{
	Use:   "installed",
	Short: "List plugins with installed components",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, installer, err := loadMarketplace()
		if err != nil {
			return err
		}
		installed, err := installer.Installed(cmd.Context())
		if err != nil {
			return err
		}
		return writeInstalled(cmd.OutOrStdout(), installed)
	},
}

func writeInstalled(w io.Writer, installed []marketplace.InstalledPlugin) error {
	if pluginInstalledJSON {
		if installed == nil {
			installed = []marketplace.InstalledPlugin{}
		}
		return writeJSON(w, installed)
	}

	if len(installed) == 0 {
		fmt.Fprintln(w, "No plugins installed.")
		return nil
	}

	t := newTable(w, "NAME", "VERSION", "INSTALLED", "COMPONENTS")
	for _, p := range installed {
		version := p.Version
		if version == "" {
			version = "-"
		}
		t.AppendRow([]any{p.Name, version, p.InstalledAt, strings.Join(p.Components, "\n")})
	}
	t.Render()
	return nil
}
