package commands

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/config"
	"github.com/thoreinstein/pluginkit/internal/definition"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/marketplace"
)

func init() {
	rootCmd.AddCommand(pluginCmd)
}

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Browse and install marketplace plugins",
	Long: `Browse the plugins of a local marketplace checkout and install their
agents, commands, skills and MCP servers.

The marketplace is read from marketplace_dir and components are
installed under install_dir (see config.yaml).`,
}

// marketplaceFor returns the catalog and installer for cfg.
func marketplaceFor(cfg *config.Config) (*marketplace.Catalog, *marketplace.Installer) {
	catalog := marketplace.NewCatalog(cfg.MarketplaceDir)
	installer := marketplace.NewInstaller(catalog, cfg.InstallDir,
		marketplace.WithLoader(newLoader(cfg)),
		marketplace.WithValidator(definition.NewValidator(
			definition.WithModels(cfg.Frontmatter.KnownModels...),
		)),
	)
	return catalog, installer
}

// loadMarketplace loads the configuration and returns its marketplace.
func loadMarketplace() (*marketplace.Catalog, *marketplace.Installer, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, nil, err
	}
	catalog, installer := marketplaceFor(cfg)
	return catalog, installer, nil
}

// pluginError adds a suggestion to errors a user can act on.
func pluginError(err error) error {
	switch {
	case errors.Is(err, errors.ErrPluginNotFound):
		return errors.NewUserError(err, "Run 'pluginkit plugin list' to see available plugins")
	case errors.Is(err, marketplace.ErrInvalidSource):
		return errors.NewUserError(err, "check the plugin source in marketplace.json")
	default:
		return err
	}
}

// newTable returns a table writing to w. Headers are bold on color
// terminals.
func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	style := table.StyleLight
	style.Options.SeparateRows = false
	if logging.SupportsColor(w) {
		style.Color.Header = text.Colors{text.Bold}
	}
	t.SetStyle(style)
	t.AppendHeader(table.Row(header))
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(v), "encoding JSON")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
