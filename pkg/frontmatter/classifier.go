package frontmatter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultKnownFields are the top-level metadata fields recognized in agent
// and command definitions.
var DefaultKnownFields = []string{
	"name",
	"description",
	"model",
	"allowed_tools",
	"argument_hint",
	"color",
}

// DefaultKnownModels are the literal values accepted for the model field.
var DefaultKnownModels = []string{
	"opus",
	"sonnet",
	"haiku",
	"claude-sonnet-4-5-20250929",
	"claude-opus-4-5-20251101",
	"claude-haiku-4-5-20251001",
}

// shortValueLen is the rune length below which a spaced value still counts
// as a plain scalar.
const shortValueLen = 20

// fieldPattern matches "identifier:" followed by optional whitespace.
var fieldPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*:\s*`)

// verdict is the outcome of a single classification rule.
type verdict int

const (
	undecided verdict = iota
	isField
	isContinuation
)

// candidate is a metadata line split into its field name and value.
type candidate struct {
	line  string
	name  string
	value string
}

// rule is one step of the ordered classification chain.
type rule struct {
	name  string
	check func(c *Classifier, l candidate) verdict
}

// rules are evaluated in order and the first decisive verdict wins.
// Reordering them changes which lines terminate a multi-line description.
var rules = []rule{
	{"indented", func(_ *Classifier, l candidate) verdict {
		r, _ := utf8.DecodeRuneInString(l.line)
		if l.line == "" || unicode.IsSpace(r) {
			return isContinuation
		}
		return undecided
	}},
	{"not-field-syntax", func(_ *Classifier, l candidate) verdict {
		if !fieldPattern.MatchString(l.line) {
			return isContinuation
		}
		return undecided
	}},
	{"unknown-field", func(c *Classifier, l candidate) verdict {
		if _, ok := c.fields[l.name]; !ok {
			return isContinuation
		}
		return undecided
	}},
	{"multiline-field", func(_ *Classifier, l candidate) verdict {
		if l.name == "description" || l.name == "name" {
			return isField
		}
		return undecided
	}},
	{"empty-value", func(_ *Classifier, l candidate) verdict {
		if l.value == "" {
			return isField
		}
		return undecided
	}},
	{"model-value", func(c *Classifier, l candidate) verdict {
		if l.name != "model" {
			return undecided
		}
		if _, ok := c.models[l.value]; ok {
			return isField
		}
		return isContinuation
	}},
	{"inline-collection", func(_ *Classifier, l candidate) verdict {
		if strings.HasPrefix(l.value, "[") || strings.HasPrefix(l.value, "{") {
			return isField
		}
		return undecided
	}},
	{"short-scalar", func(_ *Classifier, l candidate) verdict {
		if !strings.Contains(l.value, " ") || utf8.RuneCountInString(l.value) < shortValueLen {
			return isField
		}
		return undecided
	}},
	{"prose", func(_ *Classifier, _ candidate) verdict {
		return isContinuation
	}},
}

// Classifier decides whether a metadata line declares a new field or
// continues the free text of the field before it.
//
// A Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	fields map[string]struct{}
	models map[string]struct{}
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithKnownFields replaces the set of recognized field names.
func WithKnownFields(fields ...string) ClassifierOption {
	return func(c *Classifier) {
		c.fields = toSet(fields)
	}
}

// WithKnownModels replaces the set of accepted model values.
func WithKnownModels(models ...string) ClassifierOption {
	return func(c *Classifier) {
		c.models = toSet(models)
	}
}

// NewClassifier creates a Classifier using DefaultKnownFields and
// DefaultKnownModels unless overridden by opts.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		fields: toSet(DefaultKnownFields),
		models: toSet(DefaultKnownModels),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsField reports whether line starts a new recognized field.
// It is total over all inputs and never panics.
func (c *Classifier) IsField(line string) bool {
	ok, _ := c.classify(line)
	return ok
}

// classify returns the verdict together with the name of the deciding rule.
func (c *Classifier) classify(line string) (bool, string) {
	l := candidate{line: line}
	if name, value, found := strings.Cut(line, ":"); found {
		l.name = strings.TrimSpace(name)
		l.value = strings.TrimSpace(value)
	}

	for _, r := range rules {
		switch r.check(c, l) {
		case isField:
			return true, r.name
		case isContinuation:
			return false, r.name
		}
	}
	// The final rule always decides.
	return false, rules[len(rules)-1].name
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
