// Package logging provides structured logging for pluginkit using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("installed component", "plugin", "review", "component", "agent:code-reviewer")
//
// [Config.Handler] returns the bare handler so several outputs can be
// combined with [NewMultiHandler].
//
// # Verbosity and Context
//
// [LevelFromVerbosity] maps repeated -v flags to Warn, Info, Debug and
// [LevelTrace]. Commands store the configured logger with [NewContext] and
// library code retrieves it with [FromContext]:
//
//	logger := logging.FromContext(ctx)
//	logger.Debug("normalized document", "path", path)
//
// # Redaction
//
// The text handler masks attribute values whose key looks like a secret
// (see [ShouldMask]) or whose value carries a known token prefix.
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
