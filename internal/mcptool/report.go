// Package mcptool exposes report generation as a Model Context Protocol tool.
package mcptool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cssreport "github.com/yacobolo/cssreport"
	"github.com/yacobolo/cssreport/internal/cssstats"
)

// MetadataGenerateCSSReport describes the generate_css_report tool.
var MetadataGenerateCSSReport = &mcp.Tool{
	Name: "generate_css_report",
	Description: "Compute statistics for a CSS stylesheet: the number of selector blocks, " +
		"how often each property is declared, and the distinct values of selected properties. " +
		"Selectors containing brackets, parentheses or non-ASCII characters are not matched; " +
		"the warnings list reports when that affected the result.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Stylesheet text to analyse",
			},
			"unique_properties": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Properties whose distinct values are collected. Defaults to background, color, font-size and font-family; an empty list collects none.",
			},
			"include_rules": map[string]interface{}{
				"type":        "boolean",
				"description": "Also return the matched selector blocks.",
			},
		},
	},
}

// InputGenerateCSSReport is the input for the GenerateCSSReport tool.
type InputGenerateCSSReport struct {
	Content          string   `json:"content"`
	UniqueProperties []string `json:"unique_properties,omitempty"`
	IncludeRules     bool     `json:"include_rules,omitempty"`
}

// OutputGenerateCSSReport is the output for the GenerateCSSReport tool.
type OutputGenerateCSSReport struct {
	// Report is the statistics document in its wire shape.
	Report cssstats.Document `json:"report"`
	// Warnings lists constructs the block matcher does not interpret.
	Warnings []string `json:"warnings"`
	// Rules holds the matched blocks when requested.
	Rules []cssstats.Rule `json:"rules,omitempty"`
}

// GenerateCSSReport builds a report for the provided stylesheet text. Empty
// text yields an all-zero report.
func GenerateCSSReport(_ context.Context, _ *mcp.CallToolRequest, input InputGenerateCSSReport) (*mcp.CallToolResult, OutputGenerateCSSReport, error) {
	// An absent list keeps the defaults; an explicit empty one collects nothing.
	var opts []cssreport.Option
	if input.UniqueProperties != nil {
		opts = append(opts, cssreport.WithUniqueProperties(input.UniqueProperties))
	}
	report := cssreport.GenerateReport(input.Content, opts...)

	out := OutputGenerateCSSReport{
		Report:   report.Document(),
		Warnings: cssreport.Coverage(input.Content),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if input.IncludeRules {
		out.Rules = cssstats.Rules(cssstats.ExtractBlocks(input.Content))
	}
	return nil, out, nil
}

// NewServer returns an MCP server with the report tool registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "cssreport", Version: version}, nil)
	mcp.AddTool(server, MetadataGenerateCSSReport, GenerateCSSReport)
	return server
}
