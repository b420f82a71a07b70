// Package toolperm parses the allowed_tools field of agent and command
// definitions.
//
// A permission is a PascalCase tool name with an optional scope, or an MCP
// tool reference:
//
//	Read
//	Bash(git add:*)
//	mcp__github__create_issue
//
// The field is written either as a YAML list or as a single string separated
// by commas and/or whitespace. Separators inside a scope are part of the scope.
package toolperm

import (
	"regexp"
	"strings"
)

// Permission represents a parsed tool permission.
type Permission struct {
	// Name is the tool name (e.g., "Read", "Bash", "mcp__github__search").
	Name string

	// Scope is the optional scope (e.g., "git add:*" from "Bash(git add:*)").
	// Empty string if no scope is specified.
	Scope string
}

// String returns the permission in its canonical string form.
func (p Permission) String() string {
	if p.Scope == "" {
		return p.Name
	}
	return p.Name + "(" + p.Scope + ")"
}

const mcpPrefix = "mcp__"

// toolRegex matches ToolName or ToolName(scope).
// Captures: group 1 = tool name, group 2 = scope (optional, without parens)
var toolRegex = regexp.MustCompile(`^([A-Z][a-zA-Z0-9]*)(?:\(([^()]+)\))?$`)

// mcpRegex matches mcp__<server>[__<tool>].
var mcpRegex = regexp.MustCompile(`^mcp__[a-zA-Z0-9_-]+$`)

// Parser handles tool permission string parsing.
type Parser struct{}

// New creates a new Parser instance.
func New() *Parser {
	return &Parser{}
}

// Parse parses an allowed_tools string into individual permissions.
// Returns an empty slice for empty input.
func (p *Parser) Parse(allowedTools string) ([]Permission, error) {
	tokens, err := split(allowedTools)
	if err != nil {
		return nil, err
	}
	return p.ParseList(tokens)
}

// ParseList parses the list form of allowed_tools, one permission per entry.
func (p *Parser) ParseList(tokens []string) ([]Permission, error) {
	perms := make([]Permission, 0, len(tokens))
	for _, token := range tokens {
		perm, err := p.ParseSingle(token)
		if err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, nil
}

// ParseSingle parses a single tool permission token.
func (p *Parser) ParseSingle(token string) (Permission, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Permission{}, &ToolPermError{Token: token, Message: "empty tool permission"}
	}

	if strings.HasPrefix(token, mcpPrefix) {
		if !mcpRegex.MatchString(token) {
			return Permission{}, &ToolPermError{Token: token, Message: "MCP tool reference must be mcp__<server>__<tool>"}
		}
		return Permission{Name: token}, nil
	}

	matches := toolRegex.FindStringSubmatch(token)
	if matches == nil {
		return Permission{}, &ToolPermError{
			Token:   token,
			Message: "tool name must be PascalCase (start with uppercase letter, e.g., Read, Write, Bash) with an optional non-empty (scope)",
		}
	}

	return Permission{
		Name:  matches[1],
		Scope: strings.TrimSpace(matches[2]),
	}, nil
}

// Format converts permissions back to the comma separated string form.
func (p *Parser) Format(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, perm := range perms {
		parts[i] = perm.String()
	}
	return strings.Join(parts, ", ")
}

// split breaks s on commas and whitespace outside parentheses.
func split(s string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		depth  int
	)

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			cur.WriteRune(r)
		case depth == 0 && (r == ',' || r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, &ToolPermError{Token: strings.TrimSpace(s), Message: "unbalanced parentheses"}
	}
	flush()
	return tokens, nil
}
