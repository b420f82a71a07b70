package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/internal/marketplace"
)

var (
	pluginShowJSON   bool
	pluginShowReadme bool
)

func init() {
	pluginShowCmd.Flags().BoolVar(&pluginShowJSON, "json", false, "output in JSON format")
	pluginShowCmd.Flags().BoolVar(&pluginShowReadme, "readme", false, "print the plugin README")
	pluginCmd.AddCommand(pluginShowCmd)
}

var pluginShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a plugin and its components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, installer, err := loadMarketplace()
		if err != nil {
			return err
		}
		d, err := installer.Details(cmd.Context(), args[0])
		if err != nil {
			return pluginError(err)
		}
		return writePluginDetails(cmd.OutOrStdout(), d)
	},
}

func writePluginDetails(w io.Writer, d *marketplace.Details) error {
	if pluginShowJSON {
		return writeJSON(w, d)
	}

	fmt.Fprintf(w, "Name:        %s\n", d.Name)
	if d.Version != "" {
		fmt.Fprintf(w, "Version:     %s\n", d.Version)
	}
	fmt.Fprintf(w, "Category:    %s\n", d.Category)
	fmt.Fprintf(w, "Description: %s\n", d.Description)
	if d.Author != nil {
		author := d.Author.Name
		if d.Author.Email != "" {
			author += " <" + d.Author.Email + ">"
		}
		fmt.Fprintf(w, "Author:      %s\n", author)
	}
	if d.Homepage != "" {
		fmt.Fprintf(w, "Homepage:    %s\n", d.Homepage)
	}
	fmt.Fprintln(w)

	if len(d.Summaries) == 0 {
		fmt.Fprintln(w, "No components found.")
	} else {
		t := newTable(w, "COMPONENT", "DESCRIPTION")
		for _, s := range d.Summaries {
			t.AppendRow([]any{s.Component, firstLine(s.Description)})
		}
		t.Render()
	}

	if pluginShowReadme && d.Readme != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(d.Readme, "\n"))
	}
	return nil
}
