// Package cmd holds build metadata for the pluginkit binary, injected via
// ldflags:
//
//	-X github.com/thoreinstein/pluginkit/cmd.Version=v1.0.0
package cmd

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
