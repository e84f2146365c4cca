// Package cssreport extracts structural statistics from stylesheets.
//
// A report counts how often each property is declared, collects the
// distinct values of a configurable set of properties, and counts the
// selector blocks in the document.
//
// # Reports
//
// Generate a report from stylesheet text:
//
//	report := cssreport.GenerateReport("h1{color:red;} p{color:blue;}")
//	report.NumSelectors()     // 2
//	report.Count("color")     // 2
//	report.ValuesOf("color")  // [red blue]
//
// The tokenizer is intentionally small: comments, at-rules, attribute
// selectors and string literals with braces are not understood. Use
// Coverage to see what a real CSS parser would have found.
//
// # Upload flow
//
// Flow validates nothing itself; it generates a report for an already
// validated stylesheet and persists both under a new session id.
//
// # Batch analysis
//
// Analyze generates reports for local files matched by glob patterns.
//
// # CLI Tool
//
// cssreport also provides a CLI tool and HTTP server. Install with:
//
//	go install github.com/yacobolo/cssreport/cmd/cssreport@latest
package cssreport

import "github.com/yacobolo/cssreport/internal/cssstats"

// Report is the immutable result of parsing one stylesheet.
type Report = cssstats.Report

// Document is the serialized shape of a Report.
type Document = cssstats.Document

// Option configures GenerateReport.
type Option = cssstats.Option

// DefaultUniqueProperties lists the properties whose distinct values are
// collected by default.
func DefaultUniqueProperties() []string {
	return append([]string(nil), cssstats.DefaultUniqueProperties...)
}

// GenerateReport tokenizes text and returns its statistics. It never fails.
func GenerateReport(text string, opts ...Option) *Report {
	return cssstats.GenerateReport(text, opts...)
}

// WithUniqueProperties sets the properties whose distinct values are
// collected.
func WithUniqueProperties(names []string) Option {
	return cssstats.WithUniqueProperties(names)
}

// Coverage returns tokenizer warnings for text: constructs a full CSS
// parser sees that the report does not account for.
func Coverage(text string) []string {
	return cssstats.Coverage(text).Warnings()
}
