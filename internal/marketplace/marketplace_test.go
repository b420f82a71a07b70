package marketplace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "name": "test-marketplace",
  "owner": {"name": "Test"},
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
      "name": "remote",
      "description": "Lives in another repository",
      "category": "development",
      "source": {"source": "github", "repo": "example/remote"}
    },
    {
      "name": "escape",
      "description": "Points outside the marketplace",
      "category": "misc",
      "source": "../outside"
    },
    {
      "name": "review-mirror",
      "description": "Same components as review",
      "category": "development",
      "source": "./plugins/review"
    },
    {
      "description": "No name"
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
assistant: Let me use the code-reviewer agent
</example>
model: sonnet
color: blue
---

You review code for correctness.
`,
	"agents/broken.md": "# No frontmatter here\n",
	"commands/deploy.md": `---
description: Deploy the current branch
argument_hint: <environment>
allowed_tools: Bash(make deploy:*), Read
---
Run make deploy for $ARGUMENTS.
`,
	"commands/empty.md": "---\ndescription: Does nothing\n---\n",
	"skills/pdf/SKILL.md": `---
name: pdf
description: Extract text from PDF files
---
Use scripts/extract.sh.
`,
	"skills/pdf/scripts/extract.sh": "#!/bin/sh\npdftotext \"$1\" -\n",
	"skills/notes/README.md":        "not a skill\n",
	".mcp.json": `{
  "mcpServers": {
    "github": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-github"],
      "env": {"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
      "description": "GitHub issues and pull requests"
    },
    "docs": {"type": "http", "url": "https://docs.example.com/mcp"},
    "custom": {"command": "./bin/server"}
  }
}`,
}

// newMarketplace writes a marketplace with the review plugin and returns its
// root.
func newMarketplace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFiles(t, root, map[string]string{".claude-plugin/marketplace.json": testManifest})
	writeFiles(t, filepath.Join(root, "plugins", "review"), reviewPlugin)
	return root
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
