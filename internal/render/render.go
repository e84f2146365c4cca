// Package render turns reports into terminal, JSON, YAML and Markdown output.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/yacobolo/cssreport/internal/cssstats"
)

// Format is an output format.
type Format string

const (
	// FormatText is the human-readable terminal report.
	FormatText Format = "text"
	// FormatJSON exports the report documents as JSON.
	FormatJSON Format = "json"
	// FormatYAML exports the report documents as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown generates a shareable Markdown report.
	FormatMarkdown Format = "markdown"
)

// Entry is one analysed stylesheet with everything known about it.
type Entry struct {
	Name          string
	Report        *cssstats.Report
	Rules         []cssstats.Rule
	Warnings      []string
	Error         string // set when the file could not be analysed
	SessionID     string
	ReportURL     string
	StylesheetURL string
}

// Options control what the text and Markdown renderers include.
type Options struct {
	UseColors bool
	ShowRules bool
}

// ParseFormat maps a flag value to a Format. Unknown values fall back to
// text.
func ParseFormat(s string) Format {
	switch s {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Write renders entries in the requested format.
func Write(w io.Writer, entries []Entry, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatYAML:
		return WriteYAML(w, entries)
	case FormatMarkdown:
		return WriteMarkdown(w, entries, opts)
	default:
		NewReporter(w, opts).PrintEntries(entries)
		return nil
	}
}

// ShouldUseColors decides whether terminal colors are enabled.
func ShouldUseColors(force bool) bool {
	// Explicit flag wins
	if force {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}
	return false
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// uniqueRows pairs allow-listed properties with their values, in
// first-seen property order.
func uniqueRows(r *cssstats.Report) []valueRow {
	unique := r.UniqueValues()
	rows := make([]valueRow, 0, len(unique))
	for _, name := range r.Properties() {
		if values, ok := unique[name]; ok {
			rows = append(rows, valueRow{Property: name, Values: values})
		}
	}
	return rows
}

type valueRow struct {
	Property string
	Values   []string
}
