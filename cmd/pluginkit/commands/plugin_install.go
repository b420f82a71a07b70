package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/marketplace"
)

var (
	pluginInstallAll  bool
	pluginInstallJSON bool
)

// stdinIsTerminal reports whether components may be picked interactively.
var stdinIsTerminal = func() bool {
	return logging.IsTTY(os.Stdin)
}

// selectComponents asks the user to pick components of a plugin.
var selectComponents = findComponents

func init() {
	pluginInstallCmd.Flags().BoolVarP(&pluginInstallAll, "all", "a", false, "install every component of the plugin")
	pluginInstallCmd.Flags().BoolVar(&pluginInstallJSON, "json", false, "output in JSON format")
	pluginCmd.AddCommand(pluginInstallCmd)
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install <name> [component...]",
	Short: "Install components of a plugin",
	Long: `Install agents, commands, skills and MCP servers of a plugin.

Components are given as kind:name, for example agent:code-reviewer or
mcp:github. Without components, --all installs everything and an
interactive picker is shown when stdin is a terminal.

Each component is installed independently; failures are reported and
do not stop the others.`,
	Example: `  pluginkit plugin install review agent:code-reviewer skill:pdf
  pluginkit plugin install review --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, installer, err := loadMarketplace()
		if err != nil {
			return err
		}
		return runPluginInstall(cmd.Context(), cmd.OutOrStdout(), installer, args[0], args[1:])
	},
}

func runPluginInstall(ctx context.Context, w io.Writer, installer *marketplace.Installer, name string, components []string) error {
	if len(components) == 0 {
		d, err := installer.Details(ctx, name)
		if err != nil {
			return pluginError(err)
		}
		components, err = chooseComponents(d)
		if err != nil {
			return err
		}
		if len(components) == 0 {
			fmt.Fprintln(w, "Nothing selected.")
			return nil
		}
	}

	resp, err := installer.Install(ctx, name, components)
	if err != nil {
		return pluginError(err)
	}
	return writeInstallResponse(w, resp)
}

// chooseComponents picks the components to install when none were named.
func chooseComponents(d *marketplace.Details) ([]string, error) {
	all := make([]string, len(d.Summaries))
	for i, s := range d.Summaries {
		all[i] = s.Component
	}

	switch {
	case len(all) == 0:
		return nil, errors.NewUserError(
			errors.Newf("plugin %q has no components", d.Name),
			"Run 'pluginkit plugin show "+d.Name+"' to inspect it",
		)
	case pluginInstallAll:
		return all, nil
	case !stdinIsTerminal():
		return nil, errors.NewUserError(
			errors.New("no components given"),
			"name components as kind:name or pass --all",
		)
	}
	return selectComponents(d.Summaries)
}

// findComponents shows a fuzzy multi-select over summaries. Tab marks an
// entry; aborting selects nothing.
func findComponents(summaries []marketplace.Summary) ([]string, error) {
	idx, err := fuzzyfinder.FindMulti(
		summaries,
		func(i int) string {
			return summaries[i].Component
		},
		fuzzyfinder.WithHeader("Tab to select, Enter to install"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			s := summaries[i]
			return fmt.Sprintf("Component: %s\nPath: %s\n\n%s", s.Component, s.Path, s.Description)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "selecting components")
	}

	selected := make([]string, len(idx))
	for i, n := range idx {
		selected[i] = summaries[n].Component
	}
	return selected, nil
}

func writeInstallResponse(w io.Writer, resp *marketplace.InstallResponse) error {
	if pluginInstallJSON {
		if err := writeJSON(w, resp); err != nil {
			return err
		}
	} else {
		writeOutcome(w, "Installed", resp.PluginName, resp.Installed, resp.Failed)
	}

	if len(resp.Failed) > 0 {
		return errReported
	}
	return nil
}

// writeOutcome prints the succeeded and failed components of a batch.
func writeOutcome(w io.Writer, verb, plugin string, done []string, failed []marketplace.InstallResult) {
	if len(done) > 0 {
		fmt.Fprintf(w, "%s %d component(s) of %s:\n", verb, len(done), plugin)
		for _, c := range done {
			fmt.Fprintf(w, "  ✓ %s\n", c)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "Failed %d component(s):\n", len(failed))
		for _, f := range failed {
			fmt.Fprintf(w, "  ✗ %s: %s\n", f.Component, f.Error)
		}
	}
	if len(done) == 0 && len(failed) == 0 {
		fmt.Fprintln(w, "Nothing to do.")
	}
}
