package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pluginkit/internal/logging"
)

const testManifest = `{
  "name": "test-marketplace",
  "plugins": [
    {
      "name": "review",
      "description": "Code review helpers",
      "category": "development",
      "source": "./plugins/review",
      "version": "1.2.0",
      "author": {"name": "Ada", "email": "ada@example.com"}
    },
    {
      "name": "empty",
      "description": "Nothing inside",
      "category": "misc",
      "source": "./plugins/empty"
    }
  ]
}`

var reviewPlugin = map[string]string{
	"README.md": "# Review\n\nHelpers for code review.\n",
	"agents/code-reviewer.md": `---
name: code-reviewer
description: Use this agent after writing code. Examples:
<example>
user: I finished the parser
</example>
model: sonnet
---
You review code for correctness.
`,
	"commands/deploy.md": `---
description: Deploy the current branch
argument_hint: <environment>
---
Run make deploy for $ARGUMENTS.
`,
	"commands/empty.md": "---\ndescription: Does nothing\n---\n",
	".mcp.json": `{
  "mcpServers": {
    "github": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-github"],
      "env": {"GITHUB_TOKEN": "ghp_abcdefgh12345678", "LOG_LEVEL": "info"}
    },
    "custom": {"command": "./bin/server"}
  }
}`,
}

// testEnv isolates configuration from the user's files, points it at a
// fresh marketplace and install root, and resets command flags.
type testEnv struct {
	marketplaceDir string
	installDir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		marketplaceDir: t.TempDir(),
		installDir:     t.TempDir(),
	}
	writeFiles(t, env.marketplaceDir, map[string]string{".claude-plugin/marketplace.json": testManifest})
	writeFiles(t, filepath.Join(env.marketplaceDir, "plugins", "review"), reviewPlugin)
	require.NoError(t, os.MkdirAll(filepath.Join(env.marketplaceDir, "plugins", "empty"), 0o755))

	t.Setenv("PLUGINKIT_CONFIG_DIR", t.TempDir())
	t.Setenv("PLUGINKIT_MARKETPLACE_DIR", env.marketplaceDir)
	t.Setenv("PLUGINKIT_INSTALL_DIR", env.installDir)
	t.Setenv(debugEnv, "")
	t.Setenv(logging.ColorEnv, "")
	t.Chdir(t.TempDir())

	resetFlags(t)
	initConfig()
	require.NoError(t, configLoadErr)
	return env
}

// resetFlags sets every package-level flag to its default and restores the
// previous values when the test ends.
func resetFlags(t *testing.T) {
	t.Helper()
	saveLogFlags(t)

	origConfig, origErr, origFlag := appConfig, configLoadErr, configFlag
	origTerminal, origSelect := stdinIsTerminal, selectComponents
	t.Cleanup(func() {
		appConfig, configLoadErr, configFlag = origConfig, origErr, origFlag
		stdinIsTerminal, selectComponents = origTerminal, origSelect
	})

	configFlag = ""
	verbosity, quiet, logFormat, logFile = 0, false, "text", ""
	parseFormat = "json"
	normalizeWrite = false
	validateKind, validateStrict, validateJSON = "", false, false
	pluginListRefresh, pluginListJSON = false, false
	pluginShowJSON, pluginShowReadme = false, false
	pluginInstallAll, pluginInstallJSON = false, false
	pluginUninstallJSON = false
	pluginInstalledJSON = false
	mcpListJSON = false
	doctorJSON, doctorAll = false, false
	stdinIsTerminal = func() bool { return false }
}

// execute runs the CLI with args and returns what it wrote to stdout and
// stderr.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
