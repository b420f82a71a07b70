package frontmatter

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

const delimiter = "---"

var defaultParser = New()

// Result is a parsed document: its metadata mapping and trimmed body.
type Result struct {
	// Metadata is the top-level mapping of the metadata block. It is never
	// nil after a successful parse.
	Metadata map[string]any

	// Body is the document text after the closing delimiter, trimmed.
	Body string

	node *yaml.Node
}

// Decode unmarshals the metadata into v using yaml struct tags.
func (r *Result) Decode(v any) error {
	if r.node == nil {
		return nil
	}
	return errors.Wrap(r.node.Decode(v), "decoding frontmatter")
}

// Option configures a Parser.
type Option func(*Parser)

// WithClassifier sets the Classifier used to find field boundaries.
func WithClassifier(c *Classifier) Option {
	return func(p *Parser) {
		p.classifier = c
	}
}

// Parser normalizes and parses frontmatter documents.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	classifier *Classifier
}

// New creates a Parser. Without options it uses NewClassifier().
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.classifier == nil {
		p.classifier = NewClassifier()
	}
	return p
}

// Parse parses content with the default Parser. See [Parser.Parse].
func Parse(content string) (*Result, error) {
	return defaultParser.Parse(content)
}

// ParseReader reads r fully and parses it with the default Parser.
func ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading frontmatter")
	}
	return defaultParser.Parse(string(data))
}

// ParseFile reads the file at path, bounded by fileutil.MaxFileSize, and
// parses it with the default Parser.
func ParseFile(path string) (*Result, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, err
	}
	return defaultParser.Parse(string(data))
}

// Parse splits content into its metadata mapping and body.
//
// The metadata block is passed through [Parser.Normalize] before being
// loaded, so hand-written multi-line descriptions containing colons are
// accepted. Windows line endings are converted to "\n" first.
func (p *Parser) Parse(content string) (*Result, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	lines := strings.Split(content, "\n")
	if strings.TrimSpace(lines[0]) != delimiter {
		return nil, ErrMissingStartDelimiter
	}
	if closingDelimiter(lines) < 0 {
		return nil, ErrMissingEndDelimiter
	}

	lines = strings.Split(p.Normalize(content), "\n")
	end := closingDelimiter(lines)
	if end < 0 {
		return nil, ErrMissingEndDelimiter
	}

	res, err := load(strings.Join(lines[1:end], "\n"))
	if err != nil {
		return nil, err
	}
	res.Body = strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
	return res, nil
}

// load parses a metadata block strictly and requires a top-level mapping.
// An empty block yields an empty mapping.
func load(block string) (*Result, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, &SyntaxError{Err: err}
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &Result{Metadata: map[string]any{}}, nil
	}

	// An explicit null ("~", "null") is a scalar, not an empty block
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(ErrMetadataNotAMapping, "got %s", kindName(root.Kind))
	}

	metadata := map[string]any{}
	if err := root.Decode(&metadata); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return &Result{Metadata: metadata, node: root}, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// ParseHeader parses only the frontmatter from r with the default Parser.
// See [Parser.ParseHeader].
func ParseHeader(r io.Reader) (*Result, error) {
	return defaultParser.ParseHeader(r)
}

// ParseHeader parses only the frontmatter from the reader.
// It stops reading after the closing delimiter "---"; the body is neither
// consumed nor returned. This keeps listings cheap for large definitions.
func (p *Parser) ParseHeader(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "reading frontmatter")
		}
		return nil, ErrMissingStartDelimiter
	}
	if strings.TrimSpace(scanner.Text()) != delimiter {
		return nil, ErrMissingStartDelimiter
	}

	var buf strings.Builder
	buf.WriteString(scanner.Text())
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString("\n")
		buf.WriteString(line)
		if strings.TrimSpace(line) == delimiter {
			return p.Parse(buf.String())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading frontmatter")
	}

	// Let Parse decide which delimiter is missing.
	return p.Parse(buf.String())
}

// Format formats content with YAML frontmatter.
// The matter value is serialized to YAML and wrapped in "---" delimiters,
// followed by the body content.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}

	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
