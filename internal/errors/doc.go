// Package errors provides error handling conventions for pluginkit.
//
// The constructors of github.com/cockroachdb/errors are re-exported so a
// single import covers wrapping, marking and inspection. Sentinels for
// marketplace lookups live here; packages with their own failure modes
// (frontmatter, mcp, toolperm) define theirs locally.
//
//	if errors.Is(err, errors.ErrPluginNotFound) {
//	    return errors.NewUserError(err, "Run 'pluginkit plugin list' to see available plugins")
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): bad input, bad config, unparseable documents, failed validation
//   - ExitSystem (2): I/O and permission failures
//
// # ExitError
//
// [ExitError] carries the exit code and an optional suggestion up to main,
// which prints both. An ExitError with a nil Err only sets the exit code;
// commands use it after they have already reported the failure.
package errors
