package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "pluginkit"

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "PLUGINKIT_CONFIG_DIR"

// File and directory names of the plugin layout. A marketplace plugin and an
// install root share the same component directories.
const (
	AgentsDir       = "agents"
	CommandsDir     = "commands"
	SkillsDir       = "skills"
	SkillFile       = "SKILL.md"
	ReadmeFile      = "README.md"
	MCPConfigFile   = ".mcp.json"
	InstalledFile   = "installed_plugins.json"
	ManifestDir     = ".claude-plugin"
	ManifestFile    = "marketplace.json"
	DefinitionExt   = ".md"
	claudeConfigDir = ".claude"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// Home returns the user's home directory, or an empty string if it cannot
// be determined. Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns the directory searched for config.yaml.
// PLUGINKIT_CONFIG_DIR takes precedence over <ConfigHome>/pluginkit.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// DefaultMarketplaceDir returns the default local marketplace checkout.
// Returns: <DataHome>/pluginkit/marketplace
func DefaultMarketplaceDir() string {
	return filepath.Join(DataHome(), AppName, "marketplace")
}

// DefaultInstallDir returns the directory plugins are installed into.
// Returns: ~/.claude, or an empty string if the home directory is unknown.
func DefaultInstallDir() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, claudeConfigDir)
}

// ManifestPath returns the marketplace manifest inside marketplaceDir.
func ManifestPath(marketplaceDir string) string {
	return filepath.Join(marketplaceDir, ManifestDir, ManifestFile)
}

// AgentPath returns the path of agent name below root.
func AgentPath(root, name string) string {
	return filepath.Join(root, AgentsDir, name+DefinitionExt)
}

// CommandPath returns the path of command name below root.
func CommandPath(root, name string) string {
	return filepath.Join(root, CommandsDir, name+DefinitionExt)
}

// SkillPath returns the directory of skill name below root.
func SkillPath(root, name string) string {
	return filepath.Join(root, SkillsDir, name)
}

// MCPConfigPath returns the .mcp.json file below root.
func MCPConfigPath(root string) string {
	return filepath.Join(root, MCPConfigFile)
}

// InstalledRecordPath returns the installed-plugin record below root.
func InstalledRecordPath(root string) string {
	return filepath.Join(root, InstalledFile)
}
