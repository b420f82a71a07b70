// Package definition loads and validates agent, command and skill
// definitions: markdown files whose frontmatter carries the metadata and
// whose body carries the instructions.
package definition

import (
	"bytes"
	"context"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/toolperm"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
	"github.com/thoreinstein/pluginkit/pkg/frontmatter"
)

// Definition is a parsed agent, command or skill file.
type Definition struct {
	Kind component.Kind `yaml:"-" json:"kind"`
	Path string         `yaml:"-" json:"path,omitempty"`

	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description,omitempty"`
	Model        string   `yaml:"model" json:"model,omitempty"`
	AllowedTools ToolList `yaml:"allowed_tools" json:"allowed_tools,omitempty"`
	ArgumentHint string   `yaml:"argument_hint" json:"argument_hint,omitempty"`
	Color        string   `yaml:"color" json:"color,omitempty"`

	// Instructions is the markdown body.
	Instructions string `yaml:"-" json:"instructions,omitempty"`

	// NameInferred is set when the name came from the path rather than the
	// frontmatter.
	NameInferred bool `yaml:"-" json:"-"`

	// Metadata is the complete frontmatter mapping, including fields the
	// struct does not model.
	Metadata map[string]any `yaml:"-" json:"-"`
}

// Ref returns the component reference of d.
func (d *Definition) Ref() component.Ref {
	return component.Ref{Kind: d.Kind, Name: d.Name}
}

// Permissions parses AllowedTools.
func (d *Definition) Permissions() ([]toolperm.Permission, error) {
	p := toolperm.New()
	var perms []toolperm.Permission
	for _, entry := range d.AllowedTools {
		parsed, err := p.Parse(entry)
		if err != nil {
			return nil, err
		}
		perms = append(perms, parsed...)
	}
	return perms, nil
}

// Canonical renders d in normalized form: the full metadata mapping
// re-serialized as YAML followed by the instructions. Inferred names are
// written out explicitly.
//
// Name and description are always emitted quoted or as literal blocks so
// that fields following them are never read back as continuation text.
func (d *Definition) Canonical() ([]byte, error) {
	meta := make(map[string]any, len(d.Metadata)+1)
	for k, v := range d.Metadata {
		meta[k] = v
	}
	if d.Name != "" {
		meta["name"] = d.Name
	}

	var node yaml.Node
	if err := node.Encode(meta); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Value != "name" && key.Value != "description" {
			continue
		}
		if val.Kind != yaml.ScalarNode || val.Tag != "!!str" {
			continue
		}
		if strings.Contains(val.Value, "\n") {
			val.Style = yaml.LiteralStyle
		} else {
			val.Style = yaml.DoubleQuotedStyle
		}
	}
	return frontmatter.Format(&node, d.Instructions)
}

// ToolList is the allowed_tools field. It accepts a YAML sequence or a
// single string; each entry may hold several comma or space separated tools.
type ToolList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *ToolList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
			*t = nil
			return nil
		}
		*t = ToolList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return errors.Wrap(err, "allowed_tools")
		}
		*t = items
		return nil
	default:
		return errors.Newf("allowed_tools: expected string or list, line %d", node.Line)
	}
}

// ParseError represents an error that occurred while loading a definition.
type ParseError struct {
	Path string
	Kind component.Kind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "parsing " + string(e.Kind) + ": " + e.Err.Error()
	}
	return "parsing " + string(e.Kind) + " " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrUnsupportedKind is returned when loading an MCP server as a definition.
var ErrUnsupportedKind = errors.New("kind has no markdown definition")

// Loader reads definitions with a configurable parser and size limit.
// A Loader is safe for concurrent use.
type Loader struct {
	parser  *frontmatter.Parser
	maxSize int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithParser sets the frontmatter parser.
func WithParser(p *frontmatter.Parser) LoaderOption {
	return func(l *Loader) {
		l.parser = p
	}
}

// WithMaxSize sets the maximum definition file size in bytes.
func WithMaxSize(n int64) LoaderOption {
	return func(l *Loader) {
		l.maxSize = n
	}
}

// NewLoader creates a Loader. The defaults are frontmatter.New() and
// fileutil.MaxFileSize.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{maxSize: fileutil.MaxFileSize}
	for _, opt := range opts {
		opt(l)
	}
	if l.parser == nil {
		l.parser = frontmatter.New()
	}
	return l
}

var defaultLoader = NewLoader()

// Load reads the definition at path with the default Loader.
func Load(ctx context.Context, path string, kind component.Kind) (*Definition, error) {
	return defaultLoader.Load(ctx, path, kind)
}

// Load reads and parses the definition at path.
func (l *Loader) Load(ctx context.Context, path string, kind component.Kind) (*Definition, error) {
	if err := checkKind(kind); err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}

	data, err := fileutil.ReadFileWithMax(path, l.maxSize)
	if err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}

	return l.parse(ctx, data, path, kind)
}

// LoadHeader reads only the frontmatter of the definition at path. The
// returned definition has no Instructions.
func (l *Loader) LoadHeader(ctx context.Context, path string, kind component.Kind) (*Definition, error) {
	if err := checkKind(kind); err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}
	defer f.Close()

	res, err := l.parser.ParseHeader(f)
	if err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}
	return fromResult(res, path, kind)
}

// Parse parses definition content. The path is used for name inference
// and error context.
func (l *Loader) Parse(ctx context.Context, data []byte, path string, kind component.Kind) (*Definition, error) {
	if err := checkKind(kind); err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}
	return l.parse(ctx, data, path, kind)
}

func (l *Loader) parse(ctx context.Context, data []byte, path string, kind component.Kind) (*Definition, error) {
	content := string(data)
	logger := logging.FromContext(ctx)

	if normalized := l.parser.Normalize(content); normalized != content {
		logger.Debug("normalized frontmatter", "path", path, "kind", kind)
	}
	if bytes.Contains(data, []byte("\r\n")) {
		logger.Log(ctx, logging.LevelTrace, "converted CRLF line endings", "path", path)
	}

	res, err := l.parser.Parse(content)
	if err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}

	def, err := fromResult(res, path, kind)
	if err != nil {
		return nil, err
	}
	def.Instructions = res.Body
	return def, nil
}

func fromResult(res *frontmatter.Result, path string, kind component.Kind) (*Definition, error) {
	def := &Definition{}
	if err := res.Decode(def); err != nil {
		return nil, &ParseError{Path: path, Kind: kind, Err: err}
	}

	def.Kind = kind
	def.Path = path
	def.Metadata = res.Metadata
	def.Name = strings.TrimSpace(def.Name)

	if def.Name == "" && path != "" {
		def.Name = component.InferName(path)
		def.NameInferred = true
	}
	return def, nil
}

func checkKind(kind component.Kind) error {
	switch kind {
	case component.KindAgent, component.KindCommand, component.KindSkill:
		return nil
	case component.KindMCP:
		return ErrUnsupportedKind
	default:
		return component.ErrUnknownKind
	}
}
