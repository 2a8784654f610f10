package util

import (
	"fmt"
	"sort"
	"strings"
)

// KeySet is a map[E comparable]bool used as a set of unique elements.
type KeySet[E comparable] map[E]bool

// NewKeySet creates a KeySet that contains every key of every map given.
func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// Copy returns a new KeySet with the same elements as s.
func (s KeySet[E]) Copy() KeySet[E] {
	newS := NewKeySet[E]()

	for k := range s {
		newS[k] = true
	}

	return newS
}

func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

func (s KeySet[E]) Add(value E) {
	s[value] = true
}

// Equal returns whether o is a KeySet[E] or a non-nil *KeySet[E] with exactly
// the same elements as s.
func (s KeySet[E]) Equal(o any) bool {
	other, ok := o.(KeySet[E])
	if !ok {
		otherPtr, ok := o.(*KeySet[E])
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(s) != len(other) {
		return false
	}

	for k := range s {
		if !other.Has(k) {
			return false
		}
	}

	return true
}

// Elements returns the elements of s as a slice. No particular order is
// guaranteed nor should it be relied on; use Sorted for a stable order.
func (s KeySet[E]) Elements() []E {
	if s == nil {
		return nil
	}

	sl := make([]E, 0, len(s))
	for item := range s {
		sl = append(sl, item)
	}

	return sl
}

// Sorted returns the elements of s ordered by less.
func (s KeySet[E]) Sorted(less func(l, r E) bool) []E {
	return SortBy(s.Elements(), less)
}

// String shows the contents of the set with items alphabetized by their %v
// representation.
func (s KeySet[E]) String() string {
	convs := make([]string, 0, len(s))
	for k := range s {
		convs = append(convs, fmt.Sprintf("%v", k))
	}
	sort.Strings(convs)

	return "{" + strings.Join(convs, ", ") + "}"
}
