package frontmatter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// multilinePattern matches the fields allowed to carry continuation lines.
var multilinePattern = regexp.MustCompile(`^(description|name):\s*`)

// quoteEscaper escapes a value for use inside a double-quoted YAML scalar.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Normalize rewrites the metadata block of content into syntactically
// valid YAML using the default Classifier. See [Parser.Normalize].
func Normalize(content string) string {
	return defaultParser.Normalize(content)
}

// Normalize rewrites the metadata block of content so a strict YAML loader
// accepts it.
//
// Free text that follows a description or name field, up to the next line
// the Classifier accepts as a field, is folded into a literal block scalar.
// The marker is "|-" unless a later line is indented less than the first
// one; then it carries an explicit indentation indicator ("|2-") so the
// block still loads.
// Single-line values containing ":" or "<" are double-quoted. Every other
// line, the delimiters, and the body are kept verbatim.
//
// If content does not open with a "---" line or has no closing "---" line it
// is returned unchanged. Normalize never fails and is idempotent.
func (p *Parser) Normalize(content string) string {
	lines := strings.Split(content, "\n")
	if strings.TrimSpace(lines[0]) != delimiter {
		return content
	}

	end := closingDelimiter(lines)
	if end < 0 {
		return content
	}

	block := lines[1:end]
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[0])

	for i := 0; i < len(block); {
		line := block[i]

		m := multilinePattern.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			i++
			continue
		}

		field := m[1]
		_, rest, _ := strings.Cut(line, ":")
		value := strings.TrimSpace(rest)

		if isQuoted(value) {
			out = append(out, line)
			i++
			continue
		}

		j := i + 1
		for j < len(block) && !p.classifier.IsField(block[j]) {
			j++
		}

		if continuation := block[i+1 : j]; len(continuation) > 0 {
			out = append(out, blockScalar(field, value, continuation)...)
		} else {
			out = append(out, singleLine(field, value, line))
		}
		i = j
	}

	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

// blockScalar emits field as a literal block scalar holding value followed
// by the continuation lines.
func blockScalar(field, value string, continuation []string) []string {
	content := make([]string, 0, len(continuation)+1)
	if value != "" {
		content = append(content, value)
	}
	for _, line := range continuation {
		content = append(content, strings.TrimRightFunc(line, unicode.IsSpace))
	}

	out := make([]string, 0, len(content)+1)
	out = append(out, field+": "+blockMarker(content))
	for _, line := range content {
		out = append(out, "  "+line)
	}
	return out
}

// blockMarker returns the block scalar header for content. YAML infers the
// block indentation from the first non-blank line, so when a later line is
// indented less than the first one the indentation is stated explicitly.
func blockMarker(content []string) string {
	first, least := -1, -1
	for _, line := range content {
		if line == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if first < 0 {
			first = n
		}
		if least < 0 || n < least {
			least = n
		}
	}
	if first <= least {
		return "|-"
	}
	// Content lines are emitted with two extra spaces.
	return "|" + strconv.Itoa(min(least+2, 9)) + "-"
}

// singleLine quotes value when it contains characters that break plain
// scalar parsing, otherwise it returns the original line.
func singleLine(field, value, original string) string {
	if value == "" || !strings.ContainsAny(value, ":<") {
		return original
	}
	return field + `: "` + quoteEscaper.Replace(value) + `"`
}

// isQuoted reports whether value already uses explicit YAML scalar syntax.
func isQuoted(value string) bool {
	return strings.HasPrefix(value, `"`) ||
		strings.HasPrefix(value, "'") ||
		strings.HasPrefix(value, "|") ||
		strings.HasPrefix(value, ">")
}

// closingDelimiter returns the index of the first "---" line after the
// opening one, or -1.
func closingDelimiter(lines []string) int {
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			return i
		}
	}
	return -1
}
