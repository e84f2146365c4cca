package cssstats

import "slices"

// DefaultUniqueProperties lists the properties whose distinct values are
// collected when no allow-list is configured.
var DefaultUniqueProperties = []string{
	"background",
	"color",
	"font-size",
	"font-family",
}

// Aggregator keeps running per-property statistics for one document.
// It is not safe for concurrent use; each parse owns its own Aggregator.
type Aggregator struct {
	allowed map[string]struct{}

	counts map[string]int
	order  []string // property names in first-seen order

	values map[string][]string
	seen   map[string]map[string]struct{}
}

// NewAggregator returns an empty Aggregator that collects distinct values
// for the given property names. A nil allow-list collects none.
func NewAggregator(allowList []string) *Aggregator {
	allowed := make(map[string]struct{}, len(allowList))
	for _, name := range allowList {
		allowed[name] = struct{}{}
	}
	return &Aggregator{
		allowed: allowed,
		counts:  make(map[string]int),
		values:  make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

// Accumulate records one valid declaration.
func (a *Aggregator) Accumulate(d Declaration) {
	if _, ok := a.counts[d.Property]; !ok {
		a.order = append(a.order, d.Property)
	}
	a.counts[d.Property]++

	if _, ok := a.allowed[d.Property]; !ok {
		return
	}
	set, ok := a.seen[d.Property]
	if !ok {
		set = make(map[string]struct{})
		a.seen[d.Property] = set
	}
	if _, dup := set[d.Value]; dup {
		return
	}
	set[d.Value] = struct{}{}
	a.values[d.Property] = append(a.values[d.Property], d.Value)
}

// snapshot deep-copies the aggregator state.
func (a *Aggregator) snapshot() (map[string]int, []string, map[string][]string) {
	counts := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		counts[k] = v
	}
	values := make(map[string][]string, len(a.values))
	for k, v := range a.values {
		values[k] = slices.Clone(v)
	}
	return counts, slices.Clone(a.order), values
}
