package cssstats

import "regexp"

// blockPattern matches a selector-like run followed by a { ... } body.
// The selector class is deliberately narrow: letters, digits, whitespace,
// comma, period, hash and colon. Vertical tab is listed explicitly because
// RE2's \s does not include it. Anything else (attribute brackets,
// pseudo-class parentheses, @) ends the run, so the region simply fails to
// match. The body stops at the first closing brace.
var blockPattern = regexp.MustCompile(`([a-zA-Z0-9\s\v,.#:]+)\{([^}]*)\}`)

// Block is one matched selector/body unit of a stylesheet.
type Block struct {
	Selector string // raw, untrimmed
	Body     string // raw, untrimmed
}

// ExtractBlocks scans text left to right and returns every non-overlapping
// selector/body match in source order. No matches is an empty result, not
// an error.
func ExtractBlocks(text string) []Block {
	matches := blockPattern.FindAllStringSubmatch(text, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, Block{Selector: m[1], Body: m[2]})
	}
	return blocks
}

// Rule is a block with its selector and body trimmed, used for listings.
type Rule struct {
	Selector string `json:"selector" yaml:"selector"`
	Body     string `json:"body" yaml:"body"`
}

// Rules converts blocks into trimmed selector/body pairs, keeping order.
// Repeated selectors are kept as separate entries.
func Rules(blocks []Block) []Rule {
	rules := make([]Rule, 0, len(blocks))
	for _, b := range blocks {
		rules = append(rules, Rule{Selector: trim(b.Selector), Body: trim(b.Body)})
	}
	return rules
}
