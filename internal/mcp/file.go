package mcp

import (
	"encoding/json"
	"io/fs"
	"slices"
	"sort"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// ErrInvalidJSON indicates the file is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// ParseError wraps errors that occur while reading or writing an MCP file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return "MCP config " + e.Path + ": " + e.Err.Error()
	}
	return "MCP config: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes the content of an .mcp.json file. Empty input is an empty
// file.
func Parse(data []byte) (*File, error) {
	if len(data) == 0 {
		return NewFile(), nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, errors.Wrapf(ErrInvalidJSON, "%v at offset %d", err, syntaxErr.Offset)
		}
		return nil, errors.Wrapf(ErrInvalidJSON, "%v", err)
	}
	return &f, nil
}

// ReadFile reads the .mcp.json file at path.
func ReadFile(path string) (*File, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	f, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return f, nil
}

// readOrNew reads path, returning an empty file if it does not exist.
func readOrNew(path string) (*File, error) {
	f, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewFile(), nil
	}
	return f, err
}

// Names returns the server names of f in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Servers))
	for name := range f.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServerList translates every entry of f with FromEntry, sorted by name.
// Entries that cannot be translated are returned as a joined error next to
// the servers that could.
func (f *File) ServerList() ([]*Server, error) {
	var (
		servers []*Server
		errs    []error
	)
	for _, name := range f.Names() {
		entry := f.Servers[name]
		if entry == nil {
			errs = append(errs, errors.Wrapf(ErrUnsupportedEntry, "server %q is null", name))
			continue
		}
		s, err := FromEntry(name, entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		servers = append(servers, s)
	}
	return servers, errors.Join(errs...)
}

// MergeFile adds or replaces entries in the .mcp.json file at path. The file
// is created if missing. Other servers and unknown fields are preserved.
func MergeFile(path string, entries map[string]*Entry) error {
	f, err := readOrNew(path)
	if err != nil {
		return err
	}
	for name, e := range entries {
		f.Servers[name] = e
	}
	if err := fileutil.AtomicWriteJSON(path, f); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// RemoveFromFile deletes the named servers from the .mcp.json file at path
// and returns the names that were present. A missing file removes nothing.
func RemoveFromFile(path string, names []string) ([]string, error) {
	f, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		if _, ok := f.Servers[name]; ok && !slices.Contains(removed, name) {
			delete(f.Servers, name)
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if err := fileutil.AtomicWriteJSON(path, f); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return removed, nil
}
