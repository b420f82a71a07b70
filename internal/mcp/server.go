package mcp

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
)

// CommandType selects how a server is started.
type CommandType string

// Supported command types.
const (
	CommandNPX  CommandType = "npx"
	CommandBunx CommandType = "bunx"
	CommandUVX  CommandType = "uvx"
	CommandHTTP CommandType = "http"
)

// CommandTypes returns every supported command type.
func CommandTypes() []CommandType {
	return []CommandType{CommandNPX, CommandBunx, CommandUVX, CommandHTTP}
}

// Valid reports whether t is a supported command type.
func (t CommandType) Valid() bool {
	return slices.Contains(CommandTypes(), t)
}

// Server is a plugin MCP server definition.
type Server struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CommandType CommandType `json:"command_type"`

	// Package is the npm or PyPI package run by npx, bunx or uvx.
	Package string `json:"package,omitempty"`

	// URL is the endpoint of an http server.
	URL string `json:"url,omitempty"`

	EnvVars map[string]string `json:"env_vars,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Enabled bool              `json:"enabled"`
}

// UnmarshalJSON implements json.Unmarshaler. Enabled defaults to true.
func (s *Server) UnmarshalJSON(data []byte) error {
	type plain Server
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.Wrap(err, "decoding MCP server")
	}
	*s = Server(p)
	return nil
}

// IsRemote reports whether the server is reached over HTTP.
func (s *Server) IsRemote() bool {
	return s.CommandType == CommandHTTP
}

// Masked returns a copy of s that is safe to display: secret environment
// values and URL credentials are masked.
func (s *Server) Masked() *Server {
	c := *s
	c.EnvVars = logging.MaskSecrets(s.EnvVars)
	c.URL = logging.MaskURL(s.URL)
	c.Args = slices.Clone(s.Args)
	return &c
}

// ErrUnsupportedEntry is returned by FromEntry for entries that no command
// type describes.
var ErrUnsupportedEntry = errors.New("unsupported MCP server entry")

// Launch translates s into the launch form written to .mcp.json.
func (s *Server) Launch() (*Entry, error) {
	e := &Entry{
		Disabled: !s.Enabled,
	}
	if len(s.EnvVars) > 0 {
		e.Env = maps.Clone(s.EnvVars)
	}

	switch s.CommandType {
	case CommandNPX:
		e.Command = string(CommandNPX)
		e.Args = append([]string{"-y", s.Package}, s.Args...)
	case CommandBunx, CommandUVX:
		e.Command = string(s.CommandType)
		e.Args = append([]string{s.Package}, s.Args...)
	case CommandHTTP:
		e.Type = TypeHTTP
		e.URL = s.URL
	default:
		return nil, errors.Wrapf(ErrInvalidCommandType, "server %q: %q", s.Name, s.CommandType)
	}

	if s.Description != "" {
		e.setExtra("description", s.Description)
	}
	return e, nil
}

// FromEntry translates a launch-form entry back into a Server. Entries whose
// command is not npx, bunx or uvx, and that have no URL, are unsupported.
func FromEntry(name string, e *Entry) (*Server, error) {
	s := &Server{
		Name:    name,
		Enabled: !e.Disabled,
	}
	if len(e.Env) > 0 {
		s.EnvVars = maps.Clone(e.Env)
	}
	if desc, ok := e.extraString("description"); ok {
		s.Description = desc
	}

	if e.Command == "" {
		if e.URL == "" {
			return nil, errors.Wrapf(ErrUnsupportedEntry, "server %q has neither command nor url", name)
		}
		s.CommandType = CommandHTTP
		s.URL = e.URL
		return s, nil
	}

	args := e.Args
	switch CommandType(e.Command) {
	case CommandNPX:
		s.CommandType = CommandNPX
		if len(args) > 0 && args[0] == "-y" {
			args = args[1:]
		}
	case CommandBunx, CommandUVX:
		s.CommandType = CommandType(e.Command)
	default:
		return nil, errors.Wrapf(ErrUnsupportedEntry, "server %q runs %q", name, e.Command)
	}

	if len(args) == 0 {
		return nil, errors.Wrapf(ErrUnsupportedEntry, "server %q has no package", name)
	}
	s.Package = args[0]
	if len(args) > 1 {
		s.Args = slices.Clone(args[1:])
	}
	return s, nil
}
