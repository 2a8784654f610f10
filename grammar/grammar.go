// Package grammar holds context-free grammars over interned symbols and
// converts them to Chomsky Normal Form.
//
// Symbols are interned in a Pool; a Grammar built over that Pool classifies
// each symbol as terminal or nonterminal and holds the productions for each
// nonterminal. ToChomskyNormalForm rewrites the grammar in place so that every
// production is two nonterminals, a single terminal, or (for the start symbol
// only) the empty string.
package grammar

import (
	"fmt"
	"log"
	"strings"

	"github.com/dekarrin/chomsky/internal/util"
)

// SymbolSet is an unordered set of symbols.
type SymbolSet = util.KeySet[Symbol]

// Rule is every production of a single nonterminal.
type Rule struct {
	Head        Symbol
	Productions []Sequence
}

// String shows the rule in "A -> x B | ε" notation, with the symbols of each
// production separated by spaces.
func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.Head.name)
	sb.WriteString(" ->")

	for i, p := range r.Productions {
		if i > 0 {
			sb.WriteString(" |")
		}
		for _, s := range p {
			sb.WriteRune(' ')
			sb.WriteString(s.name)
		}
	}

	return sb.String()
}

// Grammar is a context-free grammar whose terminals each carry a payload of
// type P. The payload is opaque to the grammar; callers use it to associate a
// terminal with whatever it stands for (a token class, a character, etc).
//
// The zero value is not usable; create a Grammar with New.
type Grammar[P any] struct {
	pool      *Pool
	terminals map[Symbol]P
	rules     map[Symbol][]Sequence

	start    Symbol
	hasStart bool

	rank map[Symbol]int

	iterLimit int
	fresh     map[string]int
	logger    *log.Logger
}

// New creates an empty grammar whose symbols come from pool. If pool is nil,
// a new Pool is created for it.
func New[P any](pool *Pool) *Grammar[P] {
	if pool == nil {
		pool = NewPool()
	}

	return &Grammar[P]{
		pool:      pool,
		terminals: map[Symbol]P{},
		rules:     map[Symbol][]Sequence{},
		rank:      map[Symbol]int{},
		fresh:     map[string]int{},
	}
}

// Pool returns the pool the grammar's symbols come from.
func (g *Grammar[P]) Pool() *Pool {
	return g.pool
}

// SetIterationLimit sets the maximum number of passes any single fixpoint
// stage of ToChomskyNormalForm may make before it fails with
// ErrIterationLimit. A limit of 0 or less means no limit.
func (g *Grammar[P]) SetIterationLimit(n int) {
	g.iterLimit = n
}

// SetLogger sets a logger that receives a line after each normalization stage.
// Passing nil turns logging off.
func (g *Grammar[P]) SetLogger(lg *log.Logger) {
	g.logger = lg
}

// AddTerminal makes s a terminal of the grammar with the given payload.
func (g *Grammar[P]) AddTerminal(s Symbol, payload P) error {
	if s.IsZero() {
		return fmt.Errorf("add terminal: %w: zero-value symbol", ErrUnknownSymbol)
	}
	if s.IsReserved() {
		return fmt.Errorf("add terminal %q: %w", s.name, ErrReservedSymbol)
	}
	if _, ok := g.terminals[s]; ok {
		return fmt.Errorf("add terminal %q: %w", s.name, ErrDuplicateTerminal)
	}
	if _, ok := g.rules[s]; ok {
		return fmt.Errorf("add terminal %q: %w: symbol already heads a production", s.name, ErrSymbolClass)
	}

	g.terminals[s] = payload
	return nil
}

// AddRule adds the production lhs -> rhs. Adding a production that already
// exists has no effect. An rhs with no symbols is stored as [Empty].
func (g *Grammar[P]) AddRule(lhs Symbol, rhs ...Symbol) error {
	if lhs.IsZero() {
		return fmt.Errorf("add rule: %w: zero-value symbol as head", ErrUnknownSymbol)
	}
	if lhs.IsReserved() {
		return fmt.Errorf("add rule for %q: %w", lhs.name, ErrReservedSymbol)
	}
	if g.IsTerminal(lhs) {
		return fmt.Errorf("add rule for %q: %w: terminal cannot head a production", lhs.name, ErrSymbolClass)
	}

	prod := Seq(rhs...)
	if len(prod) == 0 {
		prod = Seq(Empty)
	}

	for _, s := range prod {
		if s.IsZero() {
			return fmt.Errorf("add rule for %q: %w: zero-value symbol in production", lhs.name, ErrUnknownSymbol)
		}
		if s.IsEndOfInput() {
			return fmt.Errorf("add rule for %q: %w: %q in production", lhs.name, ErrReservedSymbol, s.name)
		}
		if s.IsEmpty() && len(prod) > 1 {
			return fmt.Errorf("add rule for %q: %w", lhs.name, ErrMixedEmpty)
		}
	}

	g.addProduction(lhs, prod)
	return nil
}

// addProduction adds prod to lhs's productions if it is not already there. It
// does no checks.
func (g *Grammar[P]) addProduction(lhs Symbol, prod Sequence) bool {
	existing := g.rules[lhs]
	for _, p := range existing {
		if p.Equal(prod) {
			return false
		}
	}

	g.rules[lhs] = append(existing, prod)
	return true
}

// SetStart makes s the start symbol. s must already be in the vocabulary of
// the grammar and must be a nonterminal.
func (g *Grammar[P]) SetStart(s Symbol) error {
	if s.IsReserved() {
		return fmt.Errorf("set start to %q: %w", s.name, ErrSymbolClass)
	}
	if g.IsTerminal(s) {
		return fmt.Errorf("set start to %q: %w: symbol is a terminal", s.name, ErrSymbolClass)
	}
	if !g.Vocabulary().Has(s) {
		return fmt.Errorf("set start to %q: %w", s.name, ErrUnknownSymbol)
	}

	if g.hasStart && g.start != s {
		if g.rank[g.start] == 0 {
			g.rank[g.start] = -1
		}
	}

	g.start = s
	g.hasStart = true
	g.rank[s] = 0
	return nil
}

// Start returns the start symbol. If none has been set, the returned bool is
// false.
func (g *Grammar[P]) Start() (Symbol, bool) {
	return g.start, g.hasStart
}

// Payload returns the payload of terminal s.
func (g *Grammar[P]) Payload(s Symbol) (P, bool) {
	p, ok := g.terminals[s]
	return p, ok
}

// IsTerminal returns whether s is a terminal of the grammar.
func (g *Grammar[P]) IsTerminal(s Symbol) bool {
	_, ok := g.terminals[s]
	return ok
}

// IsNonterminal returns whether s is a symbol that is neither a terminal nor
// reserved. It does not check that s is in the vocabulary.
func (g *Grammar[P]) IsNonterminal(s Symbol) bool {
	return !s.IsReserved() && !s.IsZero() && !g.IsTerminal(s)
}

// Rank returns the distance in derivation steps from the start symbol to s as
// of the last time ranks were assigned. It is -1 if s is not known to be
// reachable.
func (g *Grammar[P]) Rank(s Symbol) int {
	r, ok := g.rank[s]
	if !ok {
		return -1
	}
	return r
}

// Copy returns a deep copy of the grammar. The copy shares g's Pool.
func (g *Grammar[P]) Copy() *Grammar[P] {
	cp := &Grammar[P]{
		pool:      g.pool,
		terminals: make(map[Symbol]P, len(g.terminals)),
		rules:     make(map[Symbol][]Sequence, len(g.rules)),
		start:     g.start,
		hasStart:  g.hasStart,
		rank:      make(map[Symbol]int, len(g.rank)),
		iterLimit: g.iterLimit,
		fresh:     make(map[string]int, len(g.fresh)),
		logger:    g.logger,
	}

	for k, v := range g.terminals {
		cp.terminals[k] = v
	}
	for k, prods := range g.rules {
		cp.rules[k] = copyProductions(prods)
	}
	for k, v := range g.rank {
		cp.rank[k] = v
	}
	for k, v := range g.fresh {
		cp.fresh[k] = v
	}

	return cp
}

func copyProductions(prods []Sequence) []Sequence {
	cp := make([]Sequence, len(prods))
	for i := range prods {
		cp[i] = prods[i].Copy()
	}
	return cp
}

// Vocabulary returns every symbol used in the grammar: all terminals, every
// nonterminal that heads a production, and every symbol that appears in a
// production (including Empty, if any production is empty).
func (g *Grammar[P]) Vocabulary() SymbolSet {
	vocab := util.NewKeySet[Symbol]()

	for t := range g.terminals {
		vocab.Add(t)
	}
	for head, prods := range g.rules {
		vocab.Add(head)
		for _, p := range prods {
			for _, s := range p {
				vocab.Add(s)
			}
		}
	}

	return vocab
}

// TerminalSymbols returns the set of terminals.
func (g *Grammar[P]) TerminalSymbols() SymbolSet {
	terms := util.NewKeySet[Symbol]()
	for t := range g.terminals {
		terms.Add(t)
	}
	return terms
}

// NonterminalRules returns a copy of the productions of every nonterminal that
// has any.
func (g *Grammar[P]) NonterminalRules() map[Symbol][]Sequence {
	rules := make(map[Symbol][]Sequence, len(g.rules))
	for head, prods := range g.rules {
		rules[head] = copyProductions(prods)
	}
	return rules
}

// Productions returns a copy of the productions of lhs.
func (g *Grammar[P]) Productions(lhs Symbol) []Sequence {
	prods, ok := g.rules[lhs]
	if !ok {
		return nil
	}
	return copyProductions(prods)
}

// RuleCount returns the total number of productions in the grammar.
func (g *Grammar[P]) RuleCount() int {
	count := 0
	for _, prods := range g.rules {
		count += len(prods)
	}
	return count
}

// Rules returns every rule of the grammar, ordered as Nonterminals orders their
// heads. Nonterminals with no productions are not included.
func (g *Grammar[P]) Rules() []Rule {
	var rules []Rule
	for _, nt := range g.Nonterminals() {
		prods, ok := g.rules[nt]
		if !ok {
			continue
		}
		rules = append(rules, Rule{Head: nt, Productions: copyProductions(prods)})
	}
	return rules
}

// Nonterminals returns every nonterminal in the vocabulary. Those with a rank
// come first ordered by rank; the rest follow. Ties are broken by symbol ID.
func (g *Grammar[P]) Nonterminals() []Symbol {
	nts := util.NewKeySet[Symbol]()
	for _, s := range g.Vocabulary().Elements() {
		if g.IsNonterminal(s) {
			nts.Add(s)
		}
	}

	return nts.Sorted(func(l, r Symbol) bool {
		lr, rr := g.Rank(l), g.Rank(r)
		if lr != rr {
			if lr < 0 {
				return false
			}
			if rr < 0 {
				return true
			}
			return lr < rr
		}
		return bySymbolID(l, r)
	})
}

// Terminals returns every terminal ordered by symbol ID.
func (g *Grammar[P]) Terminals() []Symbol {
	return g.TerminalSymbols().Sorted(bySymbolID)
}

// Render returns s as it is shown in grammar listings: nonterminals are
// wrapped in angle brackets, and terminals and reserved symbols are shown
// bare.
func (g *Grammar[P]) Render(s Symbol) string {
	if g.IsNonterminal(s) {
		return "<" + s.name + ">"
	}
	return s.name
}

// RenderSequence returns the rendering of every symbol of seq concatenated
// together.
func (g *Grammar[P]) RenderSequence(seq Sequence) string {
	var sb strings.Builder
	for _, s := range seq {
		sb.WriteString(g.Render(s))
	}
	return sb.String()
}

// String returns a multi-line listing of the grammar meant for people to read.
// It lists the nonterminals, terminals, productions, and start symbol in that
// order.
func (g *Grammar[P]) String() string {
	var sb strings.Builder

	sb.WriteString("[nonterminal symbols]\n")
	for _, nt := range g.Nonterminals() {
		sb.WriteString(g.Render(nt))
		sb.WriteRune('\n')
	}

	sb.WriteString("\n[terminal symbols]\n")
	for _, t := range g.Terminals() {
		sb.WriteString(g.Render(t))
		sb.WriteRune('\n')
	}

	sb.WriteString("\n[production]\n")
	for _, r := range g.Rules() {
		for _, p := range r.Productions {
			sb.WriteString(g.Render(r.Head))
			sb.WriteString(" -> ")
			sb.WriteString(g.RenderSequence(p))
			sb.WriteRune('\n')
		}
	}

	sb.WriteString("\n[start symbol]\n")
	if g.hasStart {
		sb.WriteString(g.Render(g.start))
		sb.WriteRune('\n')
	}

	return sb.String()
}

// ValidateCNF returns a non-nil error describing the first production found
// that is not in Chomsky Normal Form. Every production must be two
// nonterminals, one terminal, or Empty on the start symbol.
func (g *Grammar[P]) ValidateCNF() error {
	for _, r := range g.Rules() {
		for _, p := range r.Productions {
			if err := g.checkCNFProduction(r.Head, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Grammar[P]) checkCNFProduction(head Symbol, p Sequence) error {
	switch len(p) {
	case 1:
		if p[0].IsEmpty() {
			if !g.hasStart || head != g.start {
				return fmt.Errorf("%w: non-start symbol %s derives %s", ErrNotNormalized, g.Render(head), Empty.name)
			}
			return nil
		}
		if !g.IsTerminal(p[0]) {
			return fmt.Errorf("%w: unit production %s -> %s", ErrNotNormalized, g.Render(head), g.RenderSequence(p))
		}
		return nil
	case 2:
		for _, s := range p {
			if !g.IsNonterminal(s) {
				return fmt.Errorf("%w: %s -> %s has a non-nonterminal", ErrNotNormalized, g.Render(head), g.RenderSequence(p))
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s has %d symbols", ErrNotNormalized, g.Render(head), g.RenderSequence(p), len(p))
	}
}
