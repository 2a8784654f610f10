package grammar

import "errors"

var (
	// ErrNoStartSymbol is returned when an operation needs a start symbol and
	// none has been set.
	ErrNoStartSymbol = errors.New("no start symbol has been set")

	// ErrEmptyPattern is returned when a search or replace is given a pattern
	// with no symbols in it.
	ErrEmptyPattern = errors.New("pattern must contain at least one symbol")

	// ErrUnknownSymbol is returned when a symbol is not part of the vocabulary
	// of the grammar it is used with.
	ErrUnknownSymbol = errors.New("symbol is not in the grammar vocabulary")

	// ErrSymbolClass is returned when a symbol is used as a terminal where a
	// nonterminal is required, or vice-versa.
	ErrSymbolClass = errors.New("symbol is of the wrong class")

	// ErrDuplicateTerminal is returned when a symbol is added as a terminal
	// more than once.
	ErrDuplicateTerminal = errors.New("symbol is already a terminal")

	// ErrReservedSymbol is returned when Empty or EndOfInput is used where only
	// an ordinary symbol is allowed.
	ErrReservedSymbol = errors.New("symbol is reserved")

	// ErrMixedEmpty is returned when a right-hand side contains Empty alongside
	// other symbols.
	ErrMixedEmpty = errors.New("empty symbol must appear alone in a production")

	// ErrIterationLimit is returned when a normalization stage exceeds the
	// iteration limit set on the grammar.
	ErrIterationLimit = errors.New("iteration limit exceeded")

	// ErrNotNormalized is returned by ValidateCNF for a grammar that is not in
	// Chomsky Normal Form.
	ErrNotNormalized = errors.New("grammar is not in Chomsky Normal Form")
)
