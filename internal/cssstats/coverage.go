package cssstats

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// CoverageStats compares what a full CSS parser sees with what the block
// extractor matched. It never changes a Report; it only explains it.
type CoverageStats struct {
	Rulesets     int // style rules found by the CSS parser, nested ones included
	AtRules      int // @-rules, with or without a block
	Comments     int
	Declarations int // declarations found by the CSS parser
	Blocks       int // blocks matched by ExtractBlocks
}

// Coverage parses text with tdewolff's CSS parser and counts the constructs
// that the block extractor cannot represent.
func Coverage(text string) CoverageStats {
	stats := CoverageStats{Blocks: len(ExtractBlocks(text))}

	p := css.NewParser(parse.NewInputString(text), false)
	for {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return stats
		case css.BeginRulesetGrammar:
			stats.Rulesets++
		case css.AtRuleGrammar, css.BeginAtRuleGrammar:
			stats.AtRules++
		case css.CommentGrammar:
			stats.Comments++
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			stats.Declarations++
		}
	}
}

// Warnings describes the gaps between parser and extractor, if any.
func (c CoverageStats) Warnings() []string {
	var warnings []string
	if c.Rulesets != c.Blocks {
		warnings = append(warnings, fmt.Sprintf(
			"CSS parser found %d style rules but %d blocks were counted; selectors with brackets, parentheses or non-ASCII characters are not matched",
			c.Rulesets, c.Blocks))
	}
	if c.AtRules > 0 {
		warnings = append(warnings, fmt.Sprintf("%d at-rules are not interpreted (nested blocks may be truncated)", c.AtRules))
	}
	if c.Comments > 0 {
		warnings = append(warnings, fmt.Sprintf("%d comments are not stripped before counting", c.Comments))
	}
	return warnings
}
