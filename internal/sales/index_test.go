package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BuildPriceIndex(t *testing.T) {
	testCases := []struct {
		name     string
		catalog  []ProductCatalogEntry
		expected PriceIndex
	}{
		{
			name:     "Empty catalog",
			catalog:  nil,
			expected: PriceIndex{},
		},
		{
			name: "Unique titles",
			catalog: []ProductCatalogEntry{
				{Title: "Apple", Price: 2.0},
				{Title: "Pear", Price: 3.5},
			},
			expected: PriceIndex{"Apple": 2.0, "Pear": 3.5},
		},
		{
			name: "Duplicate title - last wins",
			catalog: []ProductCatalogEntry{
				{Title: "Apple", Price: 2.0},
				{Title: "Pear", Price: 3.5},
				{Title: "Apple", Price: 2.5},
			},
			expected: PriceIndex{"Apple": 2.5, "Pear": 3.5},
		},
		{
			name: "Zero price is kept",
			catalog: []ProductCatalogEntry{
				{Title: "Sample", Price: 0},
			},
			expected: PriceIndex{"Sample": 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			index := BuildPriceIndex(tc.catalog)
			// then
			assert.Equal(t, tc.expected, index)
		})
	}
}

func Test_BuildPriceIndex_DuplicateHook(t *testing.T) {
	// given
	type duplicate struct {
		title          string
		previous, next float64
	}
	var seen []duplicate
	catalog := []ProductCatalogEntry{
		{Title: "Apple", Price: 2.0},
		{Title: "Apple", Price: 2.5},
		{Title: "Pear", Price: 3.5},
		{Title: "Apple", Price: 3.0},
	}

	// when
	index := BuildPriceIndex(catalog, WithDuplicateHook(func(title string, previous, next float64) {
		seen = append(seen, duplicate{title: title, previous: previous, next: next})
	}))

	// then
	assert.Equal(t, PriceIndex{"Apple": 3.0, "Pear": 3.5}, index)
	assert.Equal(t, []duplicate{
		{title: "Apple", previous: 2.0, next: 2.5},
		{title: "Apple", previous: 2.5, next: 3.0},
	}, seen)
}

func Test_BuildPriceIndex_FreshPerCall(t *testing.T) {
	catalog := []ProductCatalogEntry{{Title: "Apple", Price: 2.0}}

	first := BuildPriceIndex(catalog)
	first["Apple"] = 100

	second := BuildPriceIndex(catalog)
	assert.Equal(t, 2.0, second["Apple"])
}
