package grammar

import "fmt"

// Symbol is a single grammar symbol. It is an immutable value; two Symbols are
// the same symbol exactly when both their ID and their Name match, so they can
// be compared with == and used as map keys.
//
// Whether a Symbol is a terminal is not a property of the Symbol itself but of
// the Grammar it is used in; see Grammar.IsTerminal.
type Symbol struct {
	id   int
	name string
}

// Reserved symbols. They exist in every pool and can never be made terminals
// nor head a rule.
var (
	// Empty is the empty string, ε. It may only appear alone on the right-hand
	// side of a production.
	Empty = Symbol{id: 0, name: "ε"}

	// EndOfInput is the end-of-input marker. It is reserved for parser
	// construction and never appears in a normalized grammar.
	EndOfInput = Symbol{id: 1, name: "$"}
)

// ID returns the numeric identifier the symbol was minted with.
func (s Symbol) ID() int {
	return s.id
}

// Name returns the name of the symbol.
func (s Symbol) Name() string {
	return s.name
}

// IsEmpty returns whether s is the reserved Empty symbol.
func (s Symbol) IsEmpty() bool {
	return s == Empty
}

// IsEndOfInput returns whether s is the reserved EndOfInput symbol.
func (s Symbol) IsEndOfInput() bool {
	return s == EndOfInput
}

// IsReserved returns whether s is one of the reserved symbols.
func (s Symbol) IsReserved() bool {
	return s.IsEmpty() || s.IsEndOfInput()
}

// IsZero returns whether s is the zero value of Symbol, which is not a valid
// symbol.
func (s Symbol) IsZero() bool {
	return s == Symbol{}
}

// Equal returns whether o is a Symbol (or *Symbol) identical to s.
func (s Symbol) Equal(o any) bool {
	other, ok := o.(Symbol)
	if !ok {
		otherPtr, ok := o.(*Symbol)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return s == other
}

// Compare orders symbols by ID, then by name. It returns a negative number if
// s sorts before o, 0 if they are the same, and a positive number otherwise.
func (s Symbol) Compare(o Symbol) int {
	if s.id != o.id {
		return s.id - o.id
	}
	switch {
	case s.name < o.name:
		return -1
	case s.name > o.name:
		return 1
	default:
		return 0
	}
}

// String returns the bare name of the symbol.
func (s Symbol) String() string {
	return s.name
}

// GoString shows the full identity of the symbol.
func (s Symbol) GoString() string {
	return fmt.Sprintf("Symbol{%d, %q}", s.id, s.name)
}

// bySymbolID is a less func that orders symbols by ID.
func bySymbolID(l, r Symbol) bool {
	return l.Compare(r) < 0
}

// Classifier reports whether a symbol is a terminal. *Grammar implements it.
type Classifier interface {
	IsTerminal(s Symbol) bool
}

// ClassifierFunc adapts a plain function to a Classifier.
type ClassifierFunc func(s Symbol) bool

func (f ClassifierFunc) IsTerminal(s Symbol) bool {
	return f(s)
}
