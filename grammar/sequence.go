package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence is an ordered list of symbols, such as the right-hand side of a
// production. Sequences compare by value with Equal; use Key to get a value
// that can be used as a map key.
type Sequence []Symbol

// Seq creates a Sequence from the given symbols.
func Seq(syms ...Symbol) Sequence {
	s := make(Sequence, len(syms))
	copy(s, syms)
	return s
}

// Copy returns a Sequence with the same symbols as seq that does not share
// storage with it.
func (seq Sequence) Copy() Sequence {
	if seq == nil {
		return nil
	}
	return Seq(seq...)
}

// Equal returns whether seq and o contain the same symbols in the same order.
func (seq Sequence) Equal(o Sequence) bool {
	if len(seq) != len(o) {
		return false
	}
	for i := range seq {
		if seq[i] != o[i] {
			return false
		}
	}
	return true
}

// Key returns a string that is the same for two sequences exactly when they
// are Equal, for sequences whose symbols come from the same Pool.
func (seq Sequence) Key() string {
	var sb strings.Builder
	for i := range seq {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(strconv.Itoa(seq[i].id))
	}
	return sb.String()
}

// Compare orders sequences lexicographically by symbol, with a sequence that
// is a prefix of another sorting first.
func (seq Sequence) Compare(o Sequence) int {
	for i := 0; i < len(seq) && i < len(o); i++ {
		if c := seq[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	return len(seq) - len(o)
}

// String returns the names of the symbols in seq concatenated together.
func (seq Sequence) String() string {
	var sb strings.Builder
	for i := range seq {
		sb.WriteString(seq[i].name)
	}
	return sb.String()
}

// Contains returns whether s occurs anywhere in seq.
func (seq Sequence) Contains(s Symbol) bool {
	for i := range seq {
		if seq[i] == s {
			return true
		}
	}
	return false
}

// HasUnisolatedTerminals returns whether seq has at least two symbols and at
// least one of them is a terminal according to c.
func (seq Sequence) HasUnisolatedTerminals(c Classifier) bool {
	if len(seq) < 2 {
		return false
	}
	for i := range seq {
		if c.IsTerminal(seq[i]) {
			return true
		}
	}
	return false
}

// IsUnit returns whether seq is exactly one symbol that is neither a terminal
// according to c nor a reserved symbol.
func (seq Sequence) IsUnit(c Classifier) bool {
	return len(seq) == 1 && !c.IsTerminal(seq[0]) && !seq[0].IsReserved()
}

// IsEmptyProduction returns whether seq is exactly [Empty].
func (seq Sequence) IsEmptyProduction() bool {
	return len(seq) == 1 && seq[0] == Empty
}

// Index returns the index of the first occurrence of pattern in seq, or -1 if
// pattern does not occur in seq. An empty pattern gives ErrEmptyPattern.
func (seq Sequence) Index(pattern Sequence) (int, error) {
	sc, err := seq.Scan(pattern)
	if err != nil {
		return -1, err
	}
	if !sc.Next() {
		return -1, nil
	}
	return sc.Index(), nil
}

// IndexAll returns the start index of every non-overlapping occurrence of
// pattern in seq, in left-to-right order. An empty pattern gives
// ErrEmptyPattern.
func (seq Sequence) IndexAll(pattern Sequence) ([]int, error) {
	sc, err := seq.Scan(pattern)
	if err != nil {
		return nil, err
	}

	var found []int
	for sc.Next() {
		found = append(found, sc.Index())
	}
	return found, nil
}

// Scan returns a Scanner that finds the occurrences of pattern in seq one at a
// time. The Scanner reads seq as it was when Scan was called. An empty pattern
// gives ErrEmptyPattern.
func (seq Sequence) Scan(pattern Sequence) (*Scanner, error) {
	if len(pattern) == 0 {
		return nil, ErrEmptyPattern
	}

	pat := pattern.Copy()
	sc := &Scanner{
		text:     seq.Copy(),
		pattern:  pat,
		badSym:   makeBadSymbolTable(pat),
		goodSuff: makeGoodSuffixTable(pat),
		match:    -1,
	}

	return sc, nil
}

// ReplaceAll replaces every non-overlapping occurrence of before in seq with
// after. Occurrences are found left to right and replaced right to left, so
// the replacements never affect which occurrences are found. An empty before
// gives ErrEmptyPattern; an empty after deletes the occurrences.
func (seq *Sequence) ReplaceAll(before, after Sequence) error {
	if len(before) == 0 {
		return ErrEmptyPattern
	}
	if before.Equal(after) {
		return nil
	}

	found, err := seq.IndexAll(before)
	if err != nil {
		return fmt.Errorf("search for %q: %w", before.String(), err)
	}
	if len(found) == 0 {
		return nil
	}

	cur := *seq
	for i := len(found) - 1; i >= 0; i-- {
		at := found[i]

		updated := make(Sequence, 0, len(cur)-len(before)+len(after))
		updated = append(updated, cur[:at]...)
		updated = append(updated, after...)
		updated = append(updated, cur[at+len(before):]...)
		cur = updated
	}

	*seq = cur
	return nil
}

// ReplaceSymbol replaces every occurrence of before in seq with after. It is
// ReplaceAll with single-symbol sequences.
func (seq *Sequence) ReplaceSymbol(before, after Symbol) {
	// a one-symbol pattern is never empty
	_ = seq.ReplaceAll(Seq(before), Seq(after))
}

// Scanner walks over the non-overlapping occurrences of a pattern in a
// sequence using Boyer-Moore search. Call Next to advance to each occurrence
// and Index to get where it starts.
type Scanner struct {
	text     Sequence
	pattern  Sequence
	badSym   map[Symbol]int
	goodSuff []int

	pos   int
	match int
	done  bool
}

// Next advances to the next occurrence of the pattern. It returns false when
// there are no more.
func (sc *Scanner) Next() bool {
	if sc.done {
		return false
	}

	n, m := len(sc.text), len(sc.pattern)

	for sc.pos <= n-m {
		j := m - 1
		for j >= 0 && sc.pattern[j] == sc.text[sc.pos+j] {
			j--
		}

		if j < 0 {
			sc.match = sc.pos
			sc.pos += m
			return true
		}

		sc.pos += sc.shift(j)
	}

	sc.done = true
	sc.match = -1
	return false
}

// Index returns the start of the occurrence found by the last call to Next, or
// -1 if Next has not found one.
func (sc *Scanner) Index() int {
	return sc.match
}

// shift gives how far to move the pattern after a mismatch at pattern index j.
// It is the larger of the bad-symbol and good-suffix shifts.
func (sc *Scanner) shift(j int) int {
	m := len(sc.pattern)
	mismatched := sc.text[sc.pos+j]

	dist, ok := sc.badSym[mismatched]
	if !ok {
		dist = m
	}
	badShift := dist - (m - 1 - j)

	goodShift := sc.goodSuff[j+1]

	if badShift > goodShift {
		return badShift
	}
	return goodShift
}

// makeBadSymbolTable maps each symbol in pat to the distance from its
// rightmost occurrence to the last index of pat. Symbols that are not in pat
// have no entry and are treated as being at distance len(pat).
func makeBadSymbolTable(pat Sequence) map[Symbol]int {
	table := make(map[Symbol]int, len(pat))
	last := len(pat) - 1
	for i := range pat {
		table[pat[i]] = last - i
	}
	return table
}

// makeGoodSuffixTable builds the strong good-suffix table for pat. Entry j+1
// is how far to shift when the mismatch happened at index j, that is, when
// pat[j+1:] matched; entry 0 is the shift after a full match. Where no
// re-occurrence of the matched suffix exists the shift falls back to the
// longest border of pat, and ultimately to len(pat).
func makeGoodSuffixTable(pat Sequence) []int {
	m := len(pat)
	shift := make([]int, m+1)
	border := make([]int, m+1)

	// case 1: the matched suffix occurs again in pat
	i, j := m, m+1
	border[i] = j
	for i > 0 {
		for j <= m && pat[i-1] != pat[j-1] {
			if shift[j] == 0 {
				shift[j] = j - i
			}
			j = border[j]
		}
		i--
		j--
		border[i] = j
	}

	// case 2: only a prefix of pat matches part of the suffix
	j = border[0]
	for i = 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = j
		}
		if i == j {
			j = border[j]
		}
	}

	return shift
}
