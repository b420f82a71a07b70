package toolperm

import (
	"fmt"

	"github.com/thoreinstein/pluginkit/internal/errors"
)

// ToolPermError represents an error in tool permission syntax.
// It matches errors.ErrInvalidToolSyntax.
type ToolPermError struct {
	Token   string // The problematic token
	Message string // Description of the error
}

func (e *ToolPermError) Error() string {
	if e.Token == "" {
		return "tool permission error: " + e.Message
	}
	return fmt.Sprintf("invalid tool permission %q: %s", e.Token, e.Message)
}

func (e *ToolPermError) Unwrap() error {
	return errors.ErrInvalidToolSyntax
}
