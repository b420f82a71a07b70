package marketplace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/mcp"
	"github.com/thoreinstein/pluginkit/pkg/frontmatter"
)

var fixedTime = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func newInstaller(t *testing.T) (*Installer, string) {
	t.Helper()
	installDir := t.TempDir()
	inst := NewInstaller(NewCatalog(newMarketplace(t)), installDir, WithClock(func() time.Time { return fixedTime }))
	return inst, installDir
}

func failedErrors(results []InstallResult) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[r.Component] = strings.ToLower(r.Error)
	}
	return out
}

func TestInstaller_Install(t *testing.T) {
	inst, installDir := newInstaller(t)
	ctx := logging.NewContext(t.Context(), logging.ForTest(t))

	resp, err := inst.Install(ctx, "review", []string{
		"agent:code-reviewer",
		"command:deploy",
		"skill:pdf",
		"mcp:github",
		"mcp:docs",
	})
	require.NoError(t, err)
	assert.Equal(t, "review", resp.PluginName)
	assert.Equal(t, "1.2.0", resp.Version)
	assert.Equal(t, []string{"agent:code-reviewer", "command:deploy", "skill:pdf", "mcp:github", "mcp:docs"}, resp.Installed)
	assert.Empty(t, resp.Failed)
	assert.NotNil(t, resp.Failed)

	// Agents are written in canonical form and load back unchanged.
	data, err := os.ReadFile(filepath.Join(installDir, "agents", "code-reviewer.md"))
	require.NoError(t, err)
	res, err := frontmatter.Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, "code-reviewer", res.Metadata["name"])
	assert.Equal(t, "sonnet", res.Metadata["model"])
	assert.True(t, strings.HasSuffix(res.Metadata["description"].(string), "</example>"))
	assert.Equal(t, "You review code for correctness.", res.Body)
	assert.Equal(t, string(data), frontmatter.Normalize(string(data)))

	// Inferred names are written out.
	data, err = os.ReadFile(filepath.Join(installDir, "commands", "deploy.md"))
	require.NoError(t, err)
	res, err = frontmatter.Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, "deploy", res.Metadata["name"])
	assert.Equal(t, "<environment>", res.Metadata["argument_hint"])

	// Skills are copied as directories.
	script, err := os.ReadFile(filepath.Join(installDir, "skills", "pdf", "scripts", "extract.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "pdftotext")
	_, err = os.Stat(filepath.Join(installDir, "skills", "pdf", "SKILL.md"))
	require.NoError(t, err)

	f, err := mcp.ReadFile(filepath.Join(installDir, ".mcp.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "github"}, f.Names())
	assert.Equal(t, map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"}, f.Servers["github"].Env)

	installed, err := inst.Installed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []InstalledPlugin{{
		Name:        "review",
		Version:     "1.2.0",
		InstalledAt: "2026-01-02T15:04:05Z",
		Components:  []string{"agent:code-reviewer", "command:deploy", "mcp:docs", "mcp:github", "skill:pdf"},
	}}, installed)
}

func TestInstaller_InstallFailures(t *testing.T) {
	inst, installDir := newInstaller(t)

	resp, err := inst.Install(t.Context(), "review", []string{
		"invalid-format",
		"unknown:test",
		"agent:nonexistent-agent",
		"agent:broken",
		"command:empty",
		"mcp:custom",
		"agent:code-reviewer",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"agent:code-reviewer"}, resp.Installed)

	failed := failedErrors(resp.Failed)
	require.Len(t, failed, 6)
	assert.Contains(t, failed["invalid-format"], "format")
	assert.Contains(t, failed["unknown:test"], "unknown")
	assert.Contains(t, failed["agent:nonexistent-agent"], "not found")
	assert.Contains(t, failed["agent:broken"], "not found")
	assert.Contains(t, failed["command:empty"], "command has no body content")
	assert.Contains(t, failed["mcp:custom"], "unsupported")

	_, err = os.Stat(filepath.Join(installDir, "commands", "empty.md"))
	assert.True(t, os.IsNotExist(err))

	installed, err := inst.Installed(t.Context())
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, []string{"agent:code-reviewer"}, installed[0].Components)
}

func TestInstaller_InstallNothingSucceeded(t *testing.T) {
	inst, installDir := newInstaller(t)

	resp, err := inst.Install(t.Context(), "review", []string{"agent:missing"})
	require.NoError(t, err)
	assert.Empty(t, resp.Installed)
	assert.NotNil(t, resp.Installed)

	_, err = os.Stat(filepath.Join(installDir, "installed_plugins.json"))
	assert.True(t, os.IsNotExist(err), "no record is written when nothing was installed")
}

func TestInstaller_InstallUnknownPlugin(t *testing.T) {
	inst, _ := newInstaller(t)

	_, err := inst.Install(t.Context(), "nonexistent-plugin", []string{"agent:test"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPluginNotFound))
}

func TestInstaller_InstallMergesRecord(t *testing.T) {
	inst, _ := newInstaller(t)
	ctx := t.Context()

	_, err := inst.Install(ctx, "review", []string{"command:deploy"})
	require.NoError(t, err)
	_, err = inst.Install(ctx, "review", []string{"agent:code-reviewer", "command:deploy"})
	require.NoError(t, err)

	installed, err := inst.Installed(ctx)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, []string{"agent:code-reviewer", "command:deploy"}, installed[0].Components)
}

func TestInstaller_Uninstall(t *testing.T) {
	inst, installDir := newInstaller(t)
	ctx := t.Context()

	_, err := inst.Install(ctx, "review", []string{"agent:code-reviewer", "skill:pdf", "mcp:github", "mcp:docs"})
	require.NoError(t, err)

	resp, err := inst.Uninstall(ctx, "review", []string{
		"agent:code-reviewer",
		"mcp:github",
		"agent:never-installed",
		"invalid-format",
		"unknown:test",
	})
	require.NoError(t, err)
	assert.Equal(t, "review", resp.PluginName)
	assert.Equal(t, []string{"agent:code-reviewer", "mcp:github"}, resp.Uninstalled)

	failed := failedErrors(resp.Failed)
	require.Len(t, failed, 3)
	assert.Contains(t, failed["agent:never-installed"], "not found")
	assert.Contains(t, failed["invalid-format"], "format")
	assert.Contains(t, failed["unknown:test"], "unknown")

	_, err = os.Stat(filepath.Join(installDir, "agents", "code-reviewer.md"))
	assert.True(t, os.IsNotExist(err))

	f, err := mcp.ReadFile(filepath.Join(installDir, ".mcp.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, f.Names())

	installed, err := inst.Installed(ctx)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, []string{"mcp:docs", "skill:pdf"}, installed[0].Components)

	resp, err = inst.Uninstall(ctx, "review", []string{"skill:pdf", "mcp:docs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"skill:pdf", "mcp:docs"}, resp.Uninstalled)

	_, err = os.Stat(filepath.Join(installDir, "skills", "pdf"))
	assert.True(t, os.IsNotExist(err))

	installed, err = inst.Installed(ctx)
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestInstaller_UninstallNotInstalledPlugin(t *testing.T) {
	inst, _ := newInstaller(t)

	resp, err := inst.Uninstall(t.Context(), "review", []string{"agent:code-reviewer"})
	require.NoError(t, err)
	assert.Empty(t, resp.Uninstalled)
	require.Len(t, resp.Failed, 1)
	assert.True(t, strings.Contains(strings.ToLower(resp.Failed[0].Error), "not found"))
}

func TestInstaller_SharedComponent(t *testing.T) {
	inst, installDir := newInstaller(t)
	ctx := t.Context()
	agentPath := filepath.Join(installDir, "agents", "code-reviewer.md")

	for _, name := range []string{"review", "review-mirror"} {
		resp, err := inst.Install(ctx, name, []string{"agent:code-reviewer"})
		require.NoError(t, err)
		require.Empty(t, resp.Failed)
	}

	_, err := inst.Uninstall(ctx, "review", []string{"agent:code-reviewer"})
	require.NoError(t, err)
	_, err = os.Stat(agentPath)
	require.NoError(t, err, "still recorded for review-mirror")

	_, err = inst.Uninstall(ctx, "review-mirror", []string{"agent:code-reviewer"})
	require.NoError(t, err)
	_, err = os.Stat(agentPath)
	assert.True(t, os.IsNotExist(err))
}

func TestInstaller_RecordFormat(t *testing.T) {
	inst, installDir := newInstaller(t)

	_, err := inst.Install(t.Context(), "review", []string{"command:deploy"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(installDir, "installed_plugins.json"))
	require.NoError(t, err)

	var f struct {
		Version int `json:"version"`
		Plugins []struct {
			Name        string   `json:"name"`
			InstalledAt string   `json:"installed_at"`
			Components  []string `json:"components"`
		} `json:"plugins"`
	}
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, 1, f.Version)
	require.Len(t, f.Plugins, 1)
	assert.Equal(t, "review", f.Plugins[0].Name)
	assert.Equal(t, "2026-01-02T15:04:05Z", f.Plugins[0].InstalledAt)
	assert.Equal(t, []string{"command:deploy"}, f.Plugins[0].Components)
}

func TestInstaller_Details(t *testing.T) {
	inst, _ := newInstaller(t)

	d, err := inst.Details(t.Context(), "review")
	require.NoError(t, err)
	assert.Equal(t, []string{"code-reviewer"}, d.Components.Agents)

	_, err = inst.Details(t.Context(), "escape")
	assert.True(t, errors.Is(err, ErrInvalidSource))
}
