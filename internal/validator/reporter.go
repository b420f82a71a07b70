package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/thoreinstein/pluginkit/internal/logging"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// maxValueLen bounds the rejected value echoed after an issue.
const maxValueLen = 50

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
	colors bool
}

// NewReporter creates a new Reporter. Text output is colored only when out
// is a terminal that accepts color (see logging.SupportsColor).
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
		colors: logging.SupportsColor(out),
	}
}

// Report writes the validation result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.encodeJSON(result)
	default:
		r.reportText(result)
		return nil
	}
}

func (r *Reporter) encodeJSON(v any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return errors.Wrap(encoder.Encode(v), "encoding JSON report")
}

// paint returns a color for attrs that honors the reporter's color setting
// rather than the process-wide default.
func (r *Reporter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// reportText writes the result as human-readable text:
//
//	agents/reviewer.md
//	Validation failed: 1 error(s), 1 warning(s)
//
//	Errors:
//	  • name: must be 2-50 characters [x]
func (r *Reporter) reportText(result *Result) {
	if result.Path != "" {
		fmt.Fprintln(r.out, r.paint(color.Bold).Sprint(result.Path))
	}

	errs := result.Errors()
	warnings := result.Warnings()
	var notes []Issue
	for _, i := range result.Issues {
		if i.Severity == SeverityInfo {
			notes = append(notes, i)
		}
	}

	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(r.out, r.paint(color.FgGreen).Sprint("✓ Validation passed"))
		r.printSection("Notes:", notes, color.FgCyan)
		return
	}

	var summary []string
	if len(errs) > 0 {
		summary = append(summary, r.paint(color.FgRed).Sprintf("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, r.paint(color.FgYellow).Sprintf("%d warning(s)", len(warnings)))
	}
	fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(summary, ", "))

	r.printSection("Errors:", errs, color.FgRed)
	r.printSection("Warnings:", warnings, color.FgYellow)
	r.printSection("Notes:", notes, color.FgCyan)
}

func (r *Reporter) printSection(title string, issues []Issue, c color.Attribute) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(r.out, title)
	for _, i := range issues {
		r.printIssue(i, c)
	}
	fmt.Fprintln(r.out)
}

// printIssue writes one line:  • field: message (key=value) [rejected value]
func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	var sb strings.Builder
	sb.WriteString("  • ")

	if i.Field != "" {
		sb.WriteString(r.paint(c).Sprint(i.Field))
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)

	dim := r.paint(color.FgHiBlack)
	if len(i.Context) > 0 {
		parts := make([]string, 0, len(i.Context))
		for k, v := range i.Context {
			parts = append(parts, k+"="+v)
		}
		sort.Strings(parts)
		sb.WriteString(" ")
		sb.WriteString(dim.Sprintf("(%s)", strings.Join(parts, ", ")))
	}

	if i.Value != nil {
		sb.WriteString(dim.Sprintf(" [%s]", truncate(fmt.Sprint(i.Value), maxValueLen)))
	}

	fmt.Fprintln(r.out, sb.String())
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
