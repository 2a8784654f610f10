package grammar

import (
	"golang.org/x/text/unicode/norm"
)

// firstMintedID is the ID given to the first symbol a Pool creates; the IDs
// below it belong to the reserved symbols.
const firstMintedID = 2

// Pool interns symbols by name. Every call to Symbol with the same name gives
// the same Symbol, and every new name gets an ID strictly greater than any
// given out before. Names are put in Unicode NFC before interning, so names
// that are canonically equivalent are the same symbol.
//
// Empty is pre-registered under its name. EndOfInput is not registered and can
// only be referred to by the package variable.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	byName map[string]Symbol
	byID   map[int]Symbol
	nextID int
}

// NewPool creates a new Pool holding only Empty.
func NewPool() *Pool {
	p := &Pool{
		byName: map[string]Symbol{},
		byID:   map[int]Symbol{},
		nextID: firstMintedID,
	}

	p.byName[Empty.name] = Empty
	p.byID[Empty.id] = Empty

	return p
}

// Symbol returns the symbol named name, creating it if it does not yet exist.
func (p *Pool) Symbol(name string) Symbol {
	name = norm.NFC.String(name)

	if s, ok := p.byName[name]; ok {
		return s
	}

	s := Symbol{id: p.nextID, name: name}
	p.nextID++
	p.byName[name] = s
	p.byID[s.id] = s

	return s
}

// Symbols returns the symbols for each of the given names, creating them as
// needed.
func (p *Pool) Symbols(names ...string) []Symbol {
	syms := make([]Symbol, len(names))
	for i := range names {
		syms[i] = p.Symbol(names[i])
	}
	return syms
}

// Has returns whether a symbol with the given name has been interned.
func (p *Pool) Has(name string) bool {
	_, ok := p.byName[norm.NFC.String(name)]
	return ok
}

// Lookup returns the symbol with the given ID, if this pool has minted one.
func (p *Pool) Lookup(id int) (Symbol, bool) {
	s, ok := p.byID[id]
	return s, ok
}

// Len returns the number of symbols in the pool, including Empty.
func (p *Pool) Len() int {
	return len(p.byName)
}
