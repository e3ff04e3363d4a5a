package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	items := []string{"alpha", "beta", "gamma", "delta"}

	filtered := Filter(items, func(s string) bool { return len(s) == 5 })

	assert.Equal(t, []string{"alpha", "gamma", "delta"}, filtered)
	for _, item := range filtered {
		assert.Len(t, item, 5)
	}

	// The source slice is untouched
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, items)

	empty := Filter(items, func(s string) bool { return false })
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}

func TestMatchesSearch(t *testing.T) {
	tests := []struct {
		name     string
		search   string
		fields   []string
		expected bool
	}{
		{name: "Empty search matches everything", search: "", fields: []string{"anything"}, expected: true},
		{name: "Case-insensitive substring", search: "LIGHT", fields: []string{"Stage lighting crew"}, expected: true},
		{name: "Match on any field", search: "pier", fields: []string{"Autumn Fair", "Pier 9"}, expected: true},
		{name: "No field matches", search: "winter", fields: []string{"Autumn Fair", "Pier 9"}, expected: false},
		{name: "No fields at all", search: "x", fields: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchesSearch(tt.search, tt.fields...))
		})
	}
}

func TestInDateRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	start := day(10)
	end := day(20)

	assert.True(t, InDateRange(day(15), &start, &end))
	assert.True(t, InDateRange(day(10), &start, &end), "start bound is inclusive")
	assert.True(t, InDateRange(day(20), &start, &end), "end bound is inclusive")
	assert.False(t, InDateRange(day(9), &start, &end))
	assert.False(t, InDateRange(day(21), &start, &end))
	assert.True(t, InDateRange(day(1), nil, &end), "nil start is open")
	assert.True(t, InDateRange(day(30), &start, nil), "nil end is open")
	assert.True(t, InDateRange(day(1), nil, nil))
}

func TestParseDateBound(t *testing.T) {
	t.Run("Empty value is an open bound", func(t *testing.T) {
		bound, err := ParseDateBound("")
		assert.NoError(t, err)
		assert.Nil(t, bound)
	})

	t.Run("RFC3339", func(t *testing.T) {
		bound, err := ParseDateBound("2025-06-15T10:30:00Z")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC), *bound)
	})

	t.Run("Date only", func(t *testing.T) {
		bound, err := ParseDateBound("2025-06-15")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), *bound)
	})

	t.Run("Garbage is rejected", func(t *testing.T) {
		_, err := ParseDateBound("06/15/2025")
		assert.Error(t, err)
	})
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(nil, 7), "empty set applies no filter")
	assert.True(t, Contains([]uint{3, 7, 9}, 7))
	assert.False(t, Contains([]uint{3, 9}, 7))
}

func TestSortByString_DescReversesAsc(t *testing.T) {
	items := []string{"Charlie", "alpha", "Bravo"}

	asc := append([]string(nil), items...)
	SortByString(asc, func(s string) string { return s }, OrderAsc)
	assert.Equal(t, []string{"alpha", "Bravo", "Charlie"}, asc)

	desc := append([]string(nil), items...)
	SortByString(desc, func(s string) string { return s }, OrderDesc)

	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestSortByFloat(t *testing.T) {
	items := []float64{2.5, 0.1, 17, 3}

	SortByFloat(items, func(v float64) float64 { return v }, OrderAsc)
	assert.Equal(t, []float64{0.1, 2.5, 3, 17}, items)

	SortByFloat(items, func(v float64) float64 { return v }, OrderDesc)
	assert.Equal(t, []float64{17, 3, 2.5, 0.1}, items)
}

func TestSortByTime(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	items := []time.Time{day(12), day(3), day(25)}

	SortByTime(items, func(t time.Time) time.Time { return t }, OrderDesc)
	assert.Equal(t, []time.Time{day(25), day(12), day(3)}, items)
}

func TestNormalizeOrder(t *testing.T) {
	assert.Equal(t, OrderDesc, NormalizeOrder("desc"))
	assert.Equal(t, OrderDesc, NormalizeOrder("DESC"))
	assert.Equal(t, OrderAsc, NormalizeOrder("asc"))
	assert.Equal(t, OrderAsc, NormalizeOrder(""))
	assert.Equal(t, OrderAsc, NormalizeOrder("sideways"))
}
