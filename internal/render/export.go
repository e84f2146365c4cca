package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/yacobolo/cssreport/internal/cssstats"
)

// ExportVersion is the schema version of JSON and YAML exports.
const ExportVersion = "1.0"

// Export is the structured export schema shared by JSON and YAML.
type Export struct {
	Version   string       `json:"version" yaml:"version"`
	Timestamp string       `json:"timestamp" yaml:"timestamp"`
	Files     []ExportFile `json:"files" yaml:"files"`
}

// ExportFile is one stylesheet in an export.
type ExportFile struct {
	Name          string             `json:"name" yaml:"name"`
	Report        *cssstats.Document `json:"report,omitempty" yaml:"report,omitempty"`
	Rules         []cssstats.Rule    `json:"rules,omitempty" yaml:"rules,omitempty"`
	Warnings      []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error         string             `json:"error,omitempty" yaml:"error,omitempty"`
	SessionID     string             `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	ReportURL     string             `json:"report_url,omitempty" yaml:"report_url,omitempty"`
	StylesheetURL string             `json:"stylesheet_url,omitempty" yaml:"stylesheet_url,omitempty"`
}

// BuildExport converts entries to the export schema.
func BuildExport(entries []Entry) Export {
	files := make([]ExportFile, len(entries))
	for i, e := range entries {
		f := ExportFile{
			Name:          e.Name,
			Rules:         e.Rules,
			Warnings:      e.Warnings,
			Error:         e.Error,
			SessionID:     e.SessionID,
			ReportURL:     e.ReportURL,
			StylesheetURL: e.StylesheetURL,
		}
		if e.Report != nil {
			doc := e.Report.Document()
			f.Report = &doc
		}
		files[i] = f
	}
	return Export{
		Version:   ExportVersion,
		Timestamp: time.Now().Format(time.RFC3339),
		Files:     files,
	}
}

// WriteJSON writes the entries as indented JSON.
func WriteJSON(w io.Writer, entries []Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildExport(entries))
}

// WriteYAML writes the entries as YAML.
func WriteYAML(w io.Writer, entries []Entry) error {
	return yaml.NewEncoder(w).Encode(BuildExport(entries))
}

// WriteMarkdown writes a Markdown report.
func WriteMarkdown(w io.Writer, entries []Entry, opts Options) error {
	var b strings.Builder

	b.WriteString("# Stylesheet Report\n\n")
	fmt.Fprintf(&b, "_%s_\n", pluralizeCount(len(entries), "stylesheet", "stylesheets"))

	for _, e := range entries {
		fmt.Fprintf(&b, "\n## %s\n\n", e.Name)
		if e.Error != "" {
			fmt.Fprintf(&b, "**Error:** %s\n", e.Error)
			continue
		}
		rep := e.Report
		if rep == nil {
			rep = &cssstats.Report{}
		}

		fmt.Fprintf(&b, "- Selectors: %d\n", rep.NumSelectors())
		fmt.Fprintf(&b, "- Declarations: %d\n", rep.TotalDeclarations())
		if e.SessionID != "" {
			fmt.Fprintf(&b, "- Session: `%s`\n", e.SessionID)
			fmt.Fprintf(&b, "- Report: [%s](%s)\n", e.ReportURL, e.ReportURL)
			fmt.Fprintf(&b, "- Stylesheet: [%s](%s)\n", e.StylesheetURL, e.StylesheetURL)
		}

		if names := rep.Properties(); len(names) > 0 {
			b.WriteString("\n| Property | Count |\n|---|---:|\n")
			for _, name := range names {
				fmt.Fprintf(&b, "| `%s` | %d |\n", name, rep.Count(name))
			}
		}

		if rows := uniqueRows(rep); len(rows) > 0 {
			b.WriteString("\n| Property | Unique values |\n|---|---|\n")
			for _, row := range rows {
				quoted := make([]string, len(row.Values))
				for i, v := range row.Values {
					quoted[i] = "`" + escapeCell(v) + "`"
				}
				fmt.Fprintf(&b, "| `%s` | %s |\n", row.Property, strings.Join(quoted, ", "))
			}
		}

		if opts.ShowRules && len(e.Rules) > 0 {
			b.WriteString("\n```css\n")
			for _, rule := range e.Rules {
				fmt.Fprintf(&b, "%s { %s }\n", rule.Selector, rule.Body)
			}
			b.WriteString("```\n")
		}

		if len(e.Warnings) > 0 {
			b.WriteString("\n> **Warnings**\n")
			for _, warning := range e.Warnings {
				fmt.Fprintf(&b, "> - %s\n", warning)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
