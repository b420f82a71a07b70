package marketplace

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/logging"
)

func TestScanner_Details(t *testing.T) {
	root := newMarketplace(t)
	dir := filepath.Join(root, "plugins", "review")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.NewContext(t.Context(), logger)

	p := &Plugin{Name: "review", Version: "1.2.0"}
	d, err := NewScanner(nil).Details(ctx, p, dir)
	require.NoError(t, err)

	assert.Equal(t, "review", d.Name)
	assert.Equal(t, "1.2.0", d.Version)
	assert.Equal(t, dir, d.Dir)
	assert.Equal(t, "# Review\n\nHelpers for code review.\n", d.Readme)
	assert.Equal(t, Components{
		Agents:     []string{"code-reviewer"},
		Commands:   []string{"deploy", "empty"},
		Skills:     []string{"pdf"},
		MCPServers: []string{"custom", "docs", "github"},
	}, d.Components)

	var refs []string
	for _, s := range d.Summaries {
		refs = append(refs, s.Component)
	}
	assert.Equal(t, []string{
		"agent:code-reviewer",
		"command:deploy", "command:empty",
		"skill:pdf",
		"mcp:custom", "mcp:docs", "mcp:github",
	}, refs)

	sum, ok := d.Lookup(component.Ref{Kind: component.KindAgent, Name: "code-reviewer"})
	require.True(t, ok)
	assert.Equal(t, "Use this agent after writing code. Examples:", sum.Description)
	assert.Equal(t, filepath.Join(dir, "agents", "code-reviewer.md"), sum.Path)

	sum, ok = d.Lookup(component.Ref{Kind: component.KindMCP, Name: "github"})
	require.True(t, ok)
	assert.Equal(t, "GitHub issues and pull requests", sum.Description)

	_, ok = d.Lookup(component.Ref{Kind: component.KindAgent, Name: "broken"})
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "skipping unparseable component")
	assert.Contains(t, logs.String(), "broken.md")
}

func TestScanner_EmptyPlugin(t *testing.T) {
	d, err := NewScanner(nil).Details(t.Context(), &Plugin{Name: "empty"}, t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, d.Summaries)
	assert.Empty(t, d.Readme)
	assert.NotNil(t, d.Components.Agents)
	assert.NotNil(t, d.Components.MCPServers)
}

func TestScanner_MissingDirectory(t *testing.T) {
	_, err := NewScanner(nil).Details(t.Context(), &Plugin{Name: "gone"}, filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestScanner_Canceled(t *testing.T) {
	root := newMarketplace(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewScanner(nil).Details(ctx, &Plugin{Name: "review"}, filepath.Join(root, "plugins", "review"))
	assert.Error(t, err)
}

func TestComponents_Refs(t *testing.T) {
	c := Components{Agents: []string{"a1"}, Skills: []string{"s1"}, MCPServers: []string{"m1"}}
	assert.Equal(t, []component.Ref{
		{Kind: component.KindAgent, Name: "a1"},
		{Kind: component.KindSkill, Name: "s1"},
		{Kind: component.KindMCP, Name: "m1"},
	}, c.Refs())
}
