// Package paths resolves the directories and files pluginkit works with.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share).
//
// # Plugin Layout
//
// A marketplace plugin directory and an install root share one layout:
//
//	<root>/agents/<name>.md
//	<root>/commands/<name>.md
//	<root>/skills/<name>/SKILL.md
//	<root>/.mcp.json
//
// An install root additionally holds installed_plugins.json. The marketplace
// itself is described by <marketplace>/.claude-plugin/marketplace.json.
package paths
