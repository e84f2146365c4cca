package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/yacobolo/cssreport/internal/cssstats"
)

// Reporter prints reports for a terminal.
type Reporter struct {
	w         io.Writer
	useColors bool
	showRules bool
}

// NewReporter creates a new reporter with the given options
func NewReporter(w io.Writer, opts Options) *Reporter {
	return &Reporter{
		w:         w,
		useColors: opts.UseColors,
		showRules: opts.ShowRules,
	}
}

// PrintEntries prints every entry followed by a one-line summary.
func (r *Reporter) PrintEntries(entries []Entry) {
	failed := 0
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(r.w, "")
		}
		if e.Error != "" {
			failed++
		}
		r.PrintEntry(e)
	}

	fmt.Fprintln(r.w, "")
	summary := pluralizeCount(len(entries), "stylesheet", "stylesheets") + " analysed"
	if failed > 0 {
		summary += fmt.Sprintf(" (%d failed)", failed)
	}
	fmt.Fprintln(r.w, r.paint(styleTotal, summary))
}

// PrintEntry prints a single stylesheet report.
func (r *Reporter) PrintEntry(e Entry) {
	fmt.Fprintln(r.w, r.paint(styleFile, e.Name))
	fmt.Fprintln(r.w, strings.Repeat("-", len(e.Name)))

	if e.Error != "" {
		fmt.Fprintln(r.w, r.paint(styleFailed, "Error: "+e.Error))
		return
	}

	rep := e.Report
	if rep == nil {
		rep = &cssstats.Report{}
	}

	fmt.Fprintf(r.w, "Selectors:     %d\n", rep.NumSelectors())
	fmt.Fprintf(r.w, "Declarations:  %d\n", rep.TotalDeclarations())
	fmt.Fprintf(r.w, "Properties:    %d\n", len(rep.Properties()))

	r.printCounts(rep)
	r.printUniqueValues(rep)
	if r.showRules {
		r.printRules(e.Rules)
	}
	r.printStorage(e)
	r.printWarnings(e.Warnings)
}

func (r *Reporter) printCounts(rep *cssstats.Report) {
	names := rep.Properties()
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.paint(styleSection, "Property Counts"))
	if len(names) == 0 {
		fmt.Fprintln(r.w, r.paint(styleEmpty, "  (none)"))
		return
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	for _, name := range names {
		fmt.Fprintf(r.w, "  %-*s  %d\n", width, name, rep.Count(name))
	}
}

func (r *Reporter) printUniqueValues(rep *cssstats.Report) {
	rows := uniqueRows(rep)
	if len(rows) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.paint(styleSection, "Unique Values"))
	for _, row := range rows {
		fmt.Fprintf(r.w, "  %s: %s\n", row.Property, strings.Join(row.Values, ", "))
	}
}

func (r *Reporter) printRules(rules []cssstats.Rule) {
	if len(rules) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.paint(styleSection, "Rules"))
	for _, rule := range rules {
		fmt.Fprintf(r.w, "  %s { %s }\n", rule.Selector, rule.Body)
	}
}

func (r *Reporter) printStorage(e Entry) {
	if e.SessionID == "" {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintf(r.w, "Session:       %s\n", e.SessionID)
	fmt.Fprintf(r.w, "Report:        %s\n", r.paint(styleLink, e.ReportURL))
	fmt.Fprintf(r.w, "Stylesheet:    %s\n", r.paint(styleLink, e.StylesheetURL))
}

func (r *Reporter) printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, r.paint(styleWarning, "Warnings"))
	for _, warning := range warnings {
		fmt.Fprintf(r.w, "• %s\n", warning)
	}
}
