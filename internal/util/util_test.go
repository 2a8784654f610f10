package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OrderedKeys(t *testing.T) {
	assert := assert.New(t)

	actual := OrderedKeys(map[string]int{"TERM": 1, "RULE": 2, "HELP": 3})

	assert.Equal([]string{"HELP", "RULE", "TERM"}, actual)
}

func Test_SortBy(t *testing.T) {
	assert := assert.New(t)

	input := []string{"ccc", "a", "bb", "d"}

	actual := SortBy(input, func(l, r string) bool { return len(l) < len(r) })

	assert.Equal([]string{"a", "d", "bb", "ccc"}, actual)
	assert.Equal([]string{"ccc", "a", "bb", "d"}, input)
}

func Test_KeySet(t *testing.T) {
	assert := assert.New(t)

	s := NewKeySet(map[string]bool{"b": true, "a": true}, map[string]bool{"c": true})
	cp := s.Copy()
	cp.Add("d")

	assert.True(s.Has("c"))
	assert.False(s.Has("d"))
	assert.True(cp.Has("d"))
	assert.Equal([]string{"a", "b", "c"}, s.Sorted(func(l, r string) bool { return l < r }))
	assert.Equal("{a, b, c}", s.String())
	assert.True(s.Equal(NewKeySet(map[string]bool{"a": true, "b": true, "c": true})))
	assert.True(s.Equal(&s))
	assert.False(s.Equal(cp))
	assert.False(s.Equal([]string{"a", "b", "c"}))
	assert.Nil(KeySet[string](nil).Elements())
}
