// Package mcp provides MCP (Model Context Protocol) server configuration for
// plugins.
//
// A plugin declares its servers in a [Server] form that names a launcher and
// a package:
//
//	server := &mcp.Server{
//	    Name:        "github",
//	    Description: "GitHub issues and pull requests",
//	    CommandType: mcp.CommandNPX,
//	    Package:     "@modelcontextprotocol/server-github",
//	    EnvVars:     map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
//	    Enabled:     true,
//	}
//
// # Launch Form
//
// Clients read servers from an .mcp.json file in launch form, an [Entry]
// holding either a command line or a remote URL. [Server.Launch] translates
// a server into an entry and [FromEntry] reverses the translation:
//
//	npx  -> npx -y <package> args...
//	bunx -> bunx <package> args...
//	uvx  -> uvx <package> args...
//	http -> {"type": "http", "url": ...}
//
// Fields of an entry that this package does not model are preserved across
// a read and write.
//
// # Files
//
// [ReadFile] loads an .mcp.json file. [MergeFile] and [RemoveFromFile] update
// an installed file atomically and leave unrelated servers untouched.
//
// # Validation
//
// [Validate] reports every problem with a server as a validator.Result.
// Use [Server.Masked] before displaying a server; it hides secret environment
// values and URL credentials.
package mcp
