package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pluginkit/pkg/frontmatter"
)

const normalizedAgent = `---
name: code-reviewer
description: |-
  Reviews code. Use when:
  - a pull request is opened
  - tests fail
model: sonnet
argument_hint: <path>
---
Review the diff.
`

func TestNormalizeCommand_Print(t *testing.T) {
	newTestEnv(t)
	path := writeFile(t, t.TempDir(), "agent.md", messyAgent)

	stdout, _, err := execute(t, "normalize", path)
	require.NoError(t, err)
	assert.Equal(t, normalizedAgent, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, messyAgent, string(data), "file is untouched without --write")
}

func TestNormalizeCommand_Write(t *testing.T) {
	newTestEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "agent.md", messyAgent)
	require.NoError(t, os.Chmod(path, 0o600))

	stdout, _, err := execute(t, "normalize", path, "--write")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Normalized")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, normalizedAgent, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "permissions are preserved")

	_, err = frontmatter.Parse(string(data))
	require.NoError(t, err)

	resetFlags(t)
	stdout, _, err = execute(t, "normalize", path, "-w")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already normalized")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "agent.md", entries[0].Name())
}

func TestNormalizeCommand_WithoutFrontmatter(t *testing.T) {
	newTestEnv(t)
	content := "# Plain markdown\n\nname: not metadata\n"
	path := writeFile(t, t.TempDir(), "plain.md", content)

	stdout, _, err := execute(t, "normalize", path)
	require.NoError(t, err)
	assert.Equal(t, content, stdout)
}

func TestNormalizeCommand_QuietWrite(t *testing.T) {
	newTestEnv(t)
	path := writeFile(t, t.TempDir(), "agent.md", messyAgent)

	stdout, _, err := execute(t, "normalize", filepath.Clean(path), "--write", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}
