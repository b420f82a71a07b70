// Package component defines the installable parts of a plugin and the
// "kind:name" references used to address them.
package component

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thoreinstein/pluginkit/internal/errors"
)

// Kind identifies the kind of plugin component.
type Kind string

// Component kinds.
const (
	KindAgent   Kind = "agent"
	KindCommand Kind = "command"
	KindSkill   Kind = "skill"
	KindMCP     Kind = "mcp"
)

// Kinds returns every component kind in display order.
func Kinds() []Kind {
	return []Kind{KindAgent, KindCommand, KindSkill, KindMCP}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAgent, KindCommand, KindSkill, KindMCP:
		return true
	}
	return false
}

// Name length bounds for agents, commands and skills.
const (
	MinNameLength = 2
	MaxNameLength = 50
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var (
	// ErrInvalidRef indicates a reference that is not of the form kind:name.
	ErrInvalidRef = errors.New("invalid component format, expected type:name")

	// ErrUnknownKind indicates a reference whose kind is not recognized.
	ErrUnknownKind = errors.New("unknown component type")

	// ErrInvalidName indicates a component name outside the allowed length or
	// character set.
	ErrInvalidName = errors.New("invalid component name")
)

// Ref addresses one component of a plugin, e.g. "agent:code-reviewer".
type Ref struct {
	Kind Kind
	Name string
}

// ParseRef parses a "kind:name" reference. The name is not validated beyond
// being non-empty; use ValidateName for definition names.
func ParseRef(s string) (Ref, error) {
	kind, name, ok := strings.Cut(s, ":")
	kind = strings.TrimSpace(kind)
	name = strings.TrimSpace(name)
	if !ok || kind == "" || name == "" {
		return Ref{}, errors.Wrapf(ErrInvalidRef, "%q", s)
	}

	ref := Ref{Kind: Kind(kind), Name: name}
	if !ref.Kind.Valid() {
		return Ref{}, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
	return ref, nil
}

// String returns the "kind:name" form of r.
func (r Ref) String() string {
	return string(r.Kind) + ":" + r.Name
}

// ValidateName checks that name is 2 to 50 characters long, starts with a
// letter or digit and contains only letters, digits, '.', '_' and '-'.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return errors.Wrapf(ErrInvalidName, "%q must be %d-%d characters", name, MinNameLength, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q may only contain letters, digits, '.', '_' and '-'", name)
	}
	return nil
}

// InferName derives a component name from a definition path.
//
//   - agents/reviewer.md -> reviewer
//   - commands/file.test.md -> file.test (only .md stripped)
//   - skills/pdf/SKILL.md -> pdf (skills are named by their directory)
func InferName(path string) string {
	base := filepath.Base(path)
	if base == "SKILL.md" {
		return filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(base, ".md")
}
