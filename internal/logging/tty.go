package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorEnv overrides terminal detection for colored output. It accepts
// "always", "never" or "auto" (the default). NO_COLOR still wins over it.
const ColorEnv = "PLUGINKIT_COLOR"

// IsTTY reports whether w is a terminal. Anything exposing Fd(), such as
// *os.File, is checked; every other writer is not a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor reports whether ANSI color codes should be written to w.
// In order of precedence:
//   - NO_COLOR set (any value) disables color
//   - PLUGINKIT_COLOR=never disables it, PLUGINKIT_COLOR=always forces it
//   - TERM=dumb disables it
//   - otherwise color follows IsTTY(w)
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	// https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv(ColorEnv))) {
	case "never", "false", "0":
		return false
	case "always", "true", "1":
		return true
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
