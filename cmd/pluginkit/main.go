// Package main is the entry point for the pluginkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/pluginkit/cmd/pluginkit/commands"
	"github.com/thoreinstein/pluginkit/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(errors.ExitUser)
	}

	if exitErr.Err != nil {
		fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
	}
	if exitErr.Suggestion != "" {
		fmt.Fprintln(os.Stderr, "Suggestion:", exitErr.Suggestion)
	}
	os.Exit(exitErr.Code)
}
