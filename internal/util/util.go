// Package util holds small generic helpers shared by the grammar tooling.
package util

import (
	"sort"

	"golang.org/x/exp/maps"
)

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

// SortBy sorts a copy of items using the given less function and returns it.
// The original slice is not modified. The sort is stable.
func SortBy[E any](items []E, less func(l, r E) bool) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	return sorted
}
