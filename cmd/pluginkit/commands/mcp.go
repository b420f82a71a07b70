package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/marketplace"
	"github.com/thoreinstein/pluginkit/internal/mcp"
	"github.com/thoreinstein/pluginkit/internal/paths"
)

var mcpListJSON bool

func init() {
	mcpListCmd.Flags().BoolVar(&mcpListJSON, "json", false, "output in JSON format")
	mcpCmd.AddCommand(mcpListCmd)
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Inspect MCP servers shipped by plugins",
}

var mcpListCmd = &cobra.Command{
	Use:   "list <plugin>",
	Short: "List the MCP servers of a plugin",
	Long: `List the MCP servers declared in a plugin's .mcp.json.

Environment variables whose names look secret (TOKEN, KEY, SECRET,
PASSWORD, ...) and URL credentials are masked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, installer, err := loadMarketplace()
		if err != nil {
			return err
		}
		return runMCPList(cmd.Context(), cmd.OutOrStdout(), installer, args[0])
	},
}

// mcpListOutput is the JSON shape of mcp list.
type mcpListOutput struct {
	Plugin      string        `json:"plugin"`
	Servers     []*mcp.Server `json:"servers"`
	Unsupported []string      `json:"unsupported,omitempty"`
}

func runMCPList(ctx context.Context, w io.Writer, installer *marketplace.Installer, plugin string) error {
	d, err := installer.Details(ctx, plugin)
	if err != nil {
		return pluginError(err)
	}

	f, err := mcp.ReadFile(paths.MCPConfigPath(d.Dir))
	if errors.Is(err, fs.ErrNotExist) {
		f = mcp.NewFile()
	} else if err != nil {
		return err
	}

	servers, convErr := f.ServerList()
	if convErr != nil {
		logging.FromContext(ctx).Warn("skipping unsupported MCP entries", "plugin", plugin, "error", convErr)
	}

	out := mcpListOutput{Plugin: d.Name, Servers: make([]*mcp.Server, 0, len(servers))}
	for _, s := range servers {
		out.Servers = append(out.Servers, s.Masked())
	}
	for _, name := range f.Names() {
		if !slices.ContainsFunc(servers, func(s *mcp.Server) bool { return s.Name == name }) {
			out.Unsupported = append(out.Unsupported, name)
		}
	}

	if mcpListJSON {
		return writeJSON(w, out)
	}
	return writeMCPTable(w, out)
}

func writeMCPTable(w io.Writer, out mcpListOutput) error {
	if len(out.Servers) == 0 && len(out.Unsupported) == 0 {
		fmt.Fprintf(w, "Plugin %s has no MCP servers.\n", out.Plugin)
		return nil
	}

	t := newTable(w, "NAME", "TYPE", "TARGET", "ENV")
	for _, s := range out.Servers {
		target := s.Package
		if s.IsRemote() {
			target = s.URL
		}
		if len(s.Args) > 0 {
			target += " " + strings.Join(s.Args, " ")
		}
		t.AppendRow([]any{s.Name, string(s.CommandType), target, formatEnv(s.EnvVars)})
	}
	for _, name := range out.Unsupported {
		t.AppendRow([]any{name, "unsupported", "-", ""})
	}
	t.Render()
	return nil
}

func formatEnv(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + env[k]
	}
	return strings.Join(lines, "\n")
}
