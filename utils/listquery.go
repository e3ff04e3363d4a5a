package utils

import (
	"sort"
	"strings"
	"time"
)

// Shared in-memory list projection used by every collection endpoint: the
// handler fetches the full collection once, then applies predicates and a
// comparator here. The source slice is never mutated.

// Sort directions
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Filter returns the elements of items for which keep returns true,
// preserving order. The input slice is left untouched.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// MatchesSearch reports whether any of the fields contains the search text,
// case-insensitively. An empty search matches everything.
func MatchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// InDateRange reports whether t falls within the inclusive [start, end]
// bounds. A nil bound is open.
func InDateRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

// ParseDateBound parses a query-string date as RFC3339 or YYYY-MM-DD.
// Returns nil for an empty value.
func ParseDateBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// Contains reports whether id is a member of set. An empty set matches
// everything (no membership filter applied).
func Contains(set []uint, id uint) bool {
	if len(set) == 0 {
		return true
	}
	for _, member := range set {
		if member == id {
			return true
		}
	}
	return false
}

// SortByString stably sorts items by a string key, case-insensitively.
// Sorting the same key with the opposite order yields the exact reversal
// for distinct keys.
func SortByString[T any](items []T, key func(T) string, order string) {
	desc := order == OrderDesc
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(key(items[i])), strings.ToLower(key(items[j]))
		if desc {
			return a > b
		}
		return a < b
	})
}

// SortByFloat stably sorts items by a numeric key
func SortByFloat[T any](items []T, key func(T) float64, order string) {
	desc := order == OrderDesc
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return key(items[i]) > key(items[j])
		}
		return key(items[i]) < key(items[j])
	})
}

// SortByTime stably sorts items by a time key
func SortByTime[T any](items []T, key func(T) time.Time, order string) {
	desc := order == OrderDesc
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return key(items[i]).After(key(items[j]))
		}
		return key(items[i]).Before(key(items[j]))
	})
}

// NormalizeOrder maps any value that is not "desc" to "asc"
func NormalizeOrder(order string) string {
	if strings.EqualFold(order, OrderDesc) {
		return OrderDesc
	}
	return OrderAsc
}
