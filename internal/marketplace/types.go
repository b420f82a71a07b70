// Package marketplace discovers plugins in a local marketplace checkout and
// installs their components into an install root.
//
// A marketplace is a directory holding .claude-plugin/marketplace.json, which
// lists plugins and the relative directory of each. A plugin directory
// contains any of agents/*.md, commands/*.md, skills/*/SKILL.md, .mcp.json
// and README.md.
package marketplace

import (
	"github.com/thoreinstein/pluginkit/internal/component"
)

// Author identifies who maintains a plugin.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Plugin is a catalog entry.
type Plugin struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Version     string  `json:"version,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Homepage    string  `json:"homepage,omitempty"`
}

// Components lists component names of a plugin by kind.
type Components struct {
	Agents     []string `json:"agents"`
	Commands   []string `json:"commands"`
	Skills     []string `json:"skills"`
	MCPServers []string `json:"mcp_servers"`
}

// Refs returns every component as a reference, agents first.
func (c Components) Refs() []component.Ref {
	var refs []component.Ref
	add := func(kind component.Kind, names []string) {
		for _, n := range names {
			refs = append(refs, component.Ref{Kind: kind, Name: n})
		}
	}
	add(component.KindAgent, c.Agents)
	add(component.KindCommand, c.Commands)
	add(component.KindSkill, c.Skills)
	add(component.KindMCP, c.MCPServers)
	return refs
}

// Summary describes one discovered component.
type Summary struct {
	Ref         component.Ref `json:"-"`
	Component   string        `json:"component"`
	Description string        `json:"description,omitempty"`
	Path        string        `json:"path"`
}

// Details is a plugin with its discovered components.
type Details struct {
	Plugin
	Readme     string     `json:"readme,omitempty"`
	Components Components `json:"components"`

	// Summaries holds one entry per component in the order of
	// Components.Refs.
	Summaries []Summary `json:"summaries,omitempty"`

	// Dir is the plugin directory inside the marketplace.
	Dir string `json:"-"`
}

// Lookup returns the summary of ref.
func (d *Details) Lookup(ref component.Ref) (Summary, bool) {
	for _, s := range d.Summaries {
		if s.Ref == ref {
			return s, true
		}
	}
	return Summary{}, false
}

// InstallResult is the outcome for one requested component.
type InstallResult struct {
	Component string `json:"component"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// InstallResponse reports an install request. Installed and Failed are
// never nil.
type InstallResponse struct {
	PluginName string          `json:"plugin_name"`
	Version    string          `json:"version,omitempty"`
	Installed  []string        `json:"installed"`
	Failed     []InstallResult `json:"failed"`
}

// InstalledPlugin is the record kept for a plugin with installed components.
type InstalledPlugin struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	InstalledAt string   `json:"installed_at"`
	Components  []string `json:"components"`
}

// UninstallResponse reports an uninstall request. Uninstalled and Failed
// are never nil.
type UninstallResponse struct {
	PluginName  string          `json:"plugin_name"`
	Uninstalled []string        `json:"uninstalled"`
	Failed      []InstallResult `json:"failed"`
}
