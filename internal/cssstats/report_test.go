package cssstats

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReport(t *testing.T) {
	tests := []struct {
		name         string
		css          string
		numSelectors int
		counts       map[string]int
		unique       map[string][]string
	}{
		{
			name:         "single block",
			css:          "h1{color:red;font-size:12px;}",
			numSelectors: 1,
			counts:       map[string]int{"color": 1, "font-size": 1},
			unique:       map[string][]string{"color": {"red"}, "font-size": {"12px"}},
		},
		{
			name:         "repeated values collapse",
			css:          "h1{color:red;} p{color:red;} p{color:blue;}",
			numSelectors: 3,
			counts:       map[string]int{"color": 3},
			unique:       map[string][]string{"color": {"red", "blue"}},
		},
		{
			name:         "no blocks",
			css:          "just text",
			numSelectors: 0,
			counts:       map[string]int{},
			unique:       map[string][]string{},
		},
		{
			name:         "malformed segment contributes nothing",
			css:          "div{color:red;bogus;}",
			numSelectors: 1,
			counts:       map[string]int{"color": 1},
			unique:       map[string][]string{"color": {"red"}},
		},
		{
			name:         "blocks without declarations still count",
			css:          "div{} span{ ; } a{margin:0}",
			numSelectors: 3,
			counts:       map[string]int{"margin": 1},
			unique:       map[string][]string{},
		},
		{
			name:         "properties outside the allow-list are only counted",
			css:          "a{margin:0} b{margin:1px} c{padding:0}",
			numSelectors: 3,
			counts:       map[string]int{"margin": 2, "padding": 1},
			unique:       map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := GenerateReport(tt.css)
			assert.Equal(t, tt.numSelectors, r.NumSelectors())
			assert.Equal(t, tt.counts, r.AttributeCounts())
			assert.Equal(t, tt.unique, r.UniqueValues())
		})
	}
}

func TestGenerateReport_FirstOccurrenceOrder(t *testing.T) {
	forward := GenerateReport("a{color:red} b{color:blue}")
	reversed := GenerateReport("b{color:blue} a{color:red}")

	assert.Equal(t, []string{"red", "blue"}, forward.ValuesOf("color"))
	assert.Equal(t, []string{"blue", "red"}, reversed.ValuesOf("color"))
	assert.Equal(t, forward.Count("color"), reversed.Count("color"))
	assert.Equal(t, forward.NumSelectors(), reversed.NumSelectors())
}

func TestGenerateReport_SameValueManyTimes(t *testing.T) {
	css := "a{background:white} b{background:white} c{background:white} d{background:black} e{background:white}"
	r := GenerateReport(css)

	assert.Equal(t, []string{"white", "black"}, r.ValuesOf("background"))
	assert.Equal(t, 5, r.Count("background"))
}

func TestGenerateReport_Idempotent(t *testing.T) {
	css := "h1{color:red;font-family:Arial} .x, #y{color:blue;margin:0;} p{font-family:Arial}"

	first, err := json.Marshal(GenerateReport(css))
	require.NoError(t, err)
	second, err := json.Marshal(GenerateReport(css))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestGenerateReport_Properties(t *testing.T) {
	r := GenerateReport("a{margin:0;color:red} b{padding:0;margin:1px}")

	assert.Equal(t, []string{"margin", "color", "padding"}, r.Properties())
	assert.Equal(t, 4, r.TotalDeclarations())
}

func TestGenerateReport_CustomAllowList(t *testing.T) {
	css := "a{margin:0;color:red} b{margin:1px;color:red}"

	r := GenerateReport(css, WithUniqueProperties([]string{"margin"}))
	assert.Equal(t, map[string][]string{"margin": {"0", "1px"}}, r.UniqueValues())

	none := GenerateReport(css, WithUniqueProperties(nil))
	assert.Empty(t, none.UniqueValues())
	assert.Equal(t, 2, none.Count("color"))
}

func TestGenerateReport_ConcurrentConfigurations(t *testing.T) {
	css := "a{margin:0;color:red} b{margin:1px;color:blue}"

	var wg sync.WaitGroup
	results := make([]*Report, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = GenerateReport(css, WithUniqueProperties([]string{"margin"}))
			} else {
				results[i] = GenerateReport(css)
			}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if i%2 == 0 {
			assert.Equal(t, map[string][]string{"margin": {"0", "1px"}}, r.UniqueValues(), "run %d", i)
		} else {
			assert.Equal(t, map[string][]string{"color": {"red", "blue"}}, r.UniqueValues(), "run %d", i)
		}
		assert.Equal(t, 2, r.Count("margin"), "run %d", i)
	}
}

func TestReport_IsDetached(t *testing.T) {
	agg := NewAggregator([]string{"color"})
	agg.Accumulate(Declaration{Property: "color", Value: "red"})
	r := Assemble([]Block{{Selector: "a", Body: "color:red"}}, agg)

	agg.Accumulate(Declaration{Property: "color", Value: "blue"})
	assert.Equal(t, []string{"red"}, r.ValuesOf("color"))
	assert.Equal(t, 1, r.Count("color"))

	counts := r.AttributeCounts()
	counts["color"] = 99
	values := r.UniqueValues()
	values["color"][0] = "green"
	assert.Equal(t, 1, r.Count("color"))
	assert.Equal(t, []string{"red"}, r.ValuesOf("color"))
}

func TestAggregator_Accumulate(t *testing.T) {
	agg := NewAggregator([]string{"color"})
	for _, v := range []string{"red", "red", "blue", "red", ""} {
		agg.Accumulate(Declaration{Property: "color", Value: v})
	}
	agg.Accumulate(Declaration{Property: "margin", Value: "0"})

	r := Assemble(nil, agg)
	assert.Equal(t, 0, r.NumSelectors())
	assert.Equal(t, map[string]int{"color": 5, "margin": 1}, r.AttributeCounts())
	assert.Equal(t, map[string][]string{"color": {"red", "blue", ""}}, r.UniqueValues())
}

func TestReport_JSON(t *testing.T) {
	data, err := json.Marshal(GenerateReport("h1{color:red;font-size:12px;}"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"descriptorMetaInfo": {
			"attributeCountsByType": {"color": 1, "font-size": 1},
			"uniqueAttributeValuesByType": {"color": ["red"], "font-size": ["12px"]}
		},
		"selectorMetaInfo": {"numSelectors": 1}
	}`, string(data))
}

func TestReport_JSONEmpty(t *testing.T) {
	data, err := json.Marshal(GenerateReport("just text"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"descriptorMetaInfo": {"attributeCountsByType": {}, "uniqueAttributeValuesByType": {}},
		"selectorMetaInfo": {"numSelectors": 0}
	}`, string(data))

	var zero Report
	data, err = json.Marshal(&zero)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"numSelectors":0`)
}

func TestReport_YAML(t *testing.T) {
	data, err := yaml.Marshal(GenerateReport("h1{color:red;} p{color:blue;}"))
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.SelectorMetaInfo.NumSelectors)
	assert.Equal(t, map[string]int{"color": 2}, doc.DescriptorMetaInfo.AttributeCountsByType)
	assert.Equal(t, []string{"red", "blue"}, doc.DescriptorMetaInfo.UniqueAttributeValuesByType["color"])
}

func ExampleGenerateReport() {
	r := GenerateReport("h1{color:red;} p{color:red;} p{color:blue;}")
	fmt.Println(r.NumSelectors(), r.Count("color"), r.ValuesOf("color"))
	// Output: 3 3 [red blue]
}
