package linkcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats a report for output.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}

// NewFormatter returns the formatter for format ("text" or "json").
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected text or json)", format)
	}
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, report *Report) error {
	p := &printer{w: w}
	p.line(strings.Repeat("━", 60))
	for _, issue := range report.Issues {
		p.printf("%s [%s] %s\n", issue.Severity, issue.Rule, issue.Message)
	}
	if len(report.Issues) > 0 {
		p.line(strings.Repeat("━", 60))
	}
	p.line("Results:")
	p.printf("  %d link%s checked\n", report.Checked, pluralize(report.Checked))
	if n := report.ErrorCount(); n > 0 {
		p.printf("  %d error%s (blocks build)\n", n, pluralize(n))
	}
	if n := report.WarningCount(); n > 0 {
		p.printf("  %d warning%s\n", n, pluralize(n))
	}
	if n := report.InfoCount(); n > 0 {
		p.printf("  %d info\n", n)
	}
	p.line("")
	switch {
	case report.HasErrors():
		p.line("❌ Site has broken links that will abort the build.")
	case report.HasWarnings():
		p.line("⚠️  Site has warnings. Consider fixing before publishing.")
	default:
		p.line("✨ All links resolve!")
	}
	return p.err
}

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) line(s string) { p.printf("%s\n", s) }

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
