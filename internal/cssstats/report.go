package cssstats

import (
	"encoding/json"
	"maps"
	"slices"
)

// Report is the immutable result of one parse. The zero value is an empty
// report with no selectors.
type Report struct {
	counts       map[string]int
	order        []string
	values       map[string][]string
	numSelectors int
}

// Assemble combines the block count with the aggregator's final state.
// The report keeps its own copy, later Accumulate calls do not affect it.
func Assemble(blocks []Block, agg *Aggregator) *Report {
	r := &Report{numSelectors: len(blocks)}
	if agg != nil {
		r.counts, r.order, r.values = agg.snapshot()
	}
	return r
}

type options struct {
	uniqueProperties []string
}

// Option configures GenerateReport.
type Option func(*options)

// WithUniqueProperties replaces the allow-list of properties whose distinct
// values are collected.
func WithUniqueProperties(names []string) Option {
	return func(o *options) {
		o.uniqueProperties = slices.Clone(names)
	}
}

// GenerateReport tokenizes text and returns its statistics. It is a pure
// function of its input and always returns a report.
func GenerateReport(text string, opts ...Option) *Report {
	o := options{uniqueProperties: DefaultUniqueProperties}
	for _, opt := range opts {
		opt(&o)
	}

	blocks := ExtractBlocks(text)
	agg := NewAggregator(o.uniqueProperties)
	for _, b := range blocks {
		for _, d := range SplitDeclarations(b.Body) {
			agg.Accumulate(d)
		}
	}
	return Assemble(blocks, agg)
}

// NumSelectors is the number of extracted blocks, not distinct selectors.
func (r *Report) NumSelectors() int {
	return r.numSelectors
}

// AttributeCounts returns a copy of the per-property declaration counts.
func (r *Report) AttributeCounts() map[string]int {
	counts := make(map[string]int, len(r.counts))
	maps.Copy(counts, r.counts)
	return counts
}

// Count returns how many valid declarations used the property.
func (r *Report) Count(property string) int {
	return r.counts[property]
}

// Properties returns property names in order of first appearance.
func (r *Report) Properties() []string {
	return slices.Clone(r.order)
}

// UniqueValues returns a copy of the distinct values per allow-listed
// property, each in first-seen order.
func (r *Report) UniqueValues() map[string][]string {
	values := make(map[string][]string, len(r.values))
	for k, v := range r.values {
		values[k] = slices.Clone(v)
	}
	return values
}

// ValuesOf returns the distinct values recorded for property, or nil.
func (r *Report) ValuesOf(property string) []string {
	return slices.Clone(r.values[property])
}

// TotalDeclarations is the number of valid declarations in the document.
func (r *Report) TotalDeclarations() int {
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total
}

// Document is the serialized form of a Report.
type Document struct {
	DescriptorMetaInfo DescriptorMetaInfo `json:"descriptorMetaInfo" yaml:"descriptorMetaInfo"`
	SelectorMetaInfo   SelectorMetaInfo   `json:"selectorMetaInfo" yaml:"selectorMetaInfo"`
}

// DescriptorMetaInfo holds the per-property statistics.
type DescriptorMetaInfo struct {
	AttributeCountsByType       map[string]int      `json:"attributeCountsByType" yaml:"attributeCountsByType"`
	UniqueAttributeValuesByType map[string][]string `json:"uniqueAttributeValuesByType" yaml:"uniqueAttributeValuesByType"`
}

// SelectorMetaInfo holds the selector statistics.
type SelectorMetaInfo struct {
	NumSelectors int `json:"numSelectors" yaml:"numSelectors"`
}

// Document returns a detached copy of the report in its wire shape.
func (r *Report) Document() Document {
	return Document{
		DescriptorMetaInfo: DescriptorMetaInfo{
			AttributeCountsByType:       r.AttributeCounts(),
			UniqueAttributeValuesByType: r.UniqueValues(),
		},
		SelectorMetaInfo: SelectorMetaInfo{NumSelectors: r.numSelectors},
	}
}

// MarshalJSON encodes the full document.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}

// MarshalYAML lets goccy/go-yaml encode the full document.
func (r *Report) MarshalYAML() (any, error) {
	return r.Document(), nil
}
