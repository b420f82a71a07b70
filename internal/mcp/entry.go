package mcp

import (
	"encoding/json"

	"github.com/thoreinstein/pluginkit/internal/errors"
)

// Transport types of an Entry.
const (
	TypeStdio = "stdio"
	TypeHTTP  = "http"
)

// Entry is a single server in an .mcp.json file.
type Entry struct {
	// Type is "stdio", "http", or empty. Empty means stdio when Command is set.
	Type string `json:"type,omitempty"`

	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	Disabled bool `json:"disabled,omitempty"`

	// extra stores JSON fields not explicitly defined in this struct so they
	// survive a read and write.
	extra map[string]json.RawMessage
}

// entryFields lists the JSON keys Entry models.
var entryFields = []string{"type", "command", "args", "env", "url", "headers", "disabled"}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	known, err := json.Marshal((*plain)(e))
	if err != nil {
		return nil, err
	}
	if len(e.extra) == 0 {
		return known, nil
	}

	result := make(map[string]json.RawMessage, len(e.extra)+len(entryFields))
	// Unknown fields first so known fields take precedence.
	for k, v := range e.extra {
		result[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		result[k] = v
	}
	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range entryFields {
		delete(raw, k)
	}

	*e = Entry(p)
	if len(raw) > 0 {
		e.extra = raw
	}
	return nil
}

func (e *Entry) setExtra(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if e.extra == nil {
		e.extra = make(map[string]json.RawMessage)
	}
	e.extra[key] = data
}

func (e *Entry) extraString(key string) (string, bool) {
	raw, ok := e.extra[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// IsRemote reports whether the entry connects to a URL instead of starting
// a process.
func (e *Entry) IsRemote() bool {
	if e.Type == TypeHTTP || e.Type == "sse" {
		return true
	}
	return e.Type == "" && e.Command == "" && e.URL != ""
}

// File is the content of an .mcp.json file.
type File struct {
	Servers map[string]*Entry `json:"mcpServers"`

	extra map[string]json.RawMessage
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{Servers: make(map[string]*Entry)}
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (f *File) MarshalJSON() ([]byte, error) {
	result := make(map[string]any, len(f.extra)+1)
	for k, v := range f.extra {
		result[k] = v
	}
	servers := f.Servers
	if servers == nil {
		servers = map[string]*Entry{}
	}
	result["mcpServers"] = servers
	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (f *File) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Servers = make(map[string]*Entry)
	if v, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(v, &f.Servers); err != nil {
			return errors.Wrap(err, "mcpServers")
		}
		delete(raw, "mcpServers")
		if f.Servers == nil {
			f.Servers = make(map[string]*Entry)
		}
	}

	if len(raw) > 0 {
		f.extra = raw
	}
	return nil
}
