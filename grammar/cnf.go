package grammar

import (
	"fmt"

	"github.com/dekarrin/chomsky/internal/util"
	"golang.org/x/exp/maps"
)

// prefixes of the names of the nonterminals created during normalization.
const (
	freshStartPrefix = "start"
	freshTermPrefix  = "term"
	freshBinPrefix   = "bin"
)

type cnfStage struct {
	name string
	run  func() error
}

// ToChomskyNormalForm rewrites g into an equivalent grammar in Chomsky Normal
// Form. Afterwards, every production is either two nonterminals, a single
// terminal, or Empty; only the start symbol may produce Empty, and the start
// symbol never appears on the right-hand side of a production. Nonterminals
// that can derive no string of terminals, and nonterminals that cannot be
// reached from the start symbol, are removed.
//
// The start symbol may be replaced by a new one during normalization; call
// Start to get it afterwards. New nonterminals are named after their role with
// a "$" and a counter (e.g. "term$1"), skipping any name already in the pool.
//
// If no start symbol is set, ErrNoStartSymbol is returned and g is not
// modified. If any stage fails, g is left as it was before the call.
func (g *Grammar[P]) ToChomskyNormalForm() error {
	if !g.hasStart {
		return ErrNoStartSymbol
	}

	work := g.Copy()

	stages := []cnfStage{
		{"rank", func() error { work.assignRanks(); return nil }},
		{"start", func() error { work.isolateStart(); return nil }},
		{"term", work.isolateTerminals},
		{"bin", work.binarize},
		{"del", work.removeEmptyProductions},
		{"unit", work.removeUnitProductions},
		{"dead", func() error { work.removeDeadSymbols(); return nil }},
		{"unreachable", func() error { work.removeUnreachableSymbols(); return nil }},
		{"rerank", func() error { work.assignRanks(); return nil }},
	}

	for _, st := range stages {
		if err := st.run(); err != nil {
			return fmt.Errorf("%s stage: %w", st.name, err)
		}
		work.dedupe()
		work.logf("DEBUG %s stage complete: %d nonterminals, %d productions", st.name, len(work.rules), work.RuleCount())
	}

	*g = *work
	return nil
}

func (g *Grammar[P]) logf(format string, a ...interface{}) {
	if g.logger == nil {
		return
	}
	g.logger.Printf(format, a...)
}

// checkIteration returns ErrIterationLimit if pass is beyond the iteration
// limit.
func (g *Grammar[P]) checkIteration(pass int) error {
	if g.iterLimit > 0 && pass > g.iterLimit {
		return fmt.Errorf("%w: more than %d passes", ErrIterationLimit, g.iterLimit)
	}
	return nil
}

// freshSymbol creates a new nonterminal whose name starts with prefix and is
// not yet in the pool.
func (g *Grammar[P]) freshSymbol(prefix string) Symbol {
	for {
		g.fresh[prefix]++
		name := fmt.Sprintf("%s$%d", prefix, g.fresh[prefix])
		if !g.pool.Has(name) {
			return g.pool.Symbol(name)
		}
	}
}

// heads returns every nonterminal with productions, ordered by ID.
func (g *Grammar[P]) heads() []Symbol {
	return util.SortBy(maps.Keys(g.rules), bySymbolID)
}

// dedupe removes repeated productions, keeping the first of each.
func (g *Grammar[P]) dedupe() {
	for head, prods := range g.rules {
		seen := map[string]bool{}
		kept := prods[:0]
		for _, p := range prods {
			k := p.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			kept = append(kept, p)
		}
		g.rules[head] = kept
	}
}

// assignRanks sets the rank of every nonterminal to its breadth-first distance
// from the start symbol. Nonterminals that cannot be reached get -1.
func (g *Grammar[P]) assignRanks() {
	g.rank = map[Symbol]int{}
	if !g.hasStart {
		return
	}

	g.rank[g.start] = 0
	queue := []Symbol{g.start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, p := range g.rules[cur] {
			for _, s := range p {
				if !g.IsNonterminal(s) {
					continue
				}
				if _, ranked := g.rank[s]; ranked {
					continue
				}
				g.rank[s] = g.rank[cur] + 1
				queue = append(queue, s)
			}
		}
	}

	for _, nt := range g.Nonterminals() {
		if _, ranked := g.rank[nt]; !ranked {
			g.rank[nt] = -1
		}
	}
}

// isolateStart adds a new start symbol that produces the old one, if the old
// one appears on the right-hand side of any production.
func (g *Grammar[P]) isolateStart() {
	used := false
	for _, prods := range g.rules {
		for _, p := range prods {
			if p.Contains(g.start) {
				used = true
				break
			}
		}
		if used {
			break
		}
	}
	if !used {
		return
	}

	newStart := g.freshSymbol(freshStartPrefix)
	g.addProduction(newStart, Seq(g.start))
	g.rank[newStart] = 0
	g.rank[g.start] = 1
	g.start = newStart
}

// isolateTerminals replaces each terminal that appears in a production of two
// or more symbols with a new nonterminal that produces only that terminal.
// One such nonterminal is made per terminal.
func (g *Grammar[P]) isolateTerminals() error {
	termSyms := map[Symbol]Symbol{}

	for _, head := range g.heads() {
		prods := g.rules[head]
		for i := range prods {
			if !prods[i].HasUnisolatedTerminals(g) {
				continue
			}

			for _, t := range prods[i].Copy() {
				if !g.IsTerminal(t) || !prods[i].Contains(t) {
					continue
				}
				nt, ok := termSyms[t]
				if !ok {
					nt = g.freshSymbol(freshTermPrefix)
					termSyms[t] = nt
				}
				if err := prods[i].ReplaceAll(Seq(t), Seq(nt)); err != nil {
					return err
				}
			}
		}
	}

	// added after the walk so the new productions are not themselves walked.
	for _, t := range util.SortBy(maps.Keys(termSyms), bySymbolID) {
		g.addProduction(termSyms[t], Seq(t))
	}
	return nil
}

// binarize factors the last two symbols of every production of three or more
// symbols into a new nonterminal until no such production remains. The same
// new nonterminal is reused for every equal pair.
func (g *Grammar[P]) binarize() error {
	pairSyms := map[string]Symbol{}

	for pass := 1; ; pass++ {
		if err := g.checkIteration(pass); err != nil {
			return err
		}

		changed := false
		for _, head := range g.heads() {
			prods := g.rules[head]
			for i := range prods {
				if len(prods[i]) < 3 {
					continue
				}

				pair := prods[i][len(prods[i])-2:].Copy()
				nt, ok := pairSyms[pair.Key()]
				if !ok {
					nt = g.freshSymbol(freshBinPrefix)
					pairSyms[pair.Key()] = nt
					g.addProduction(nt, pair)
				}

				if err := prods[i].ReplaceAll(pair, Seq(nt)); err != nil {
					return err
				}
				changed = true
			}
		}

		if !changed {
			return nil
		}
	}
}

// removeEmptyProductions removes every Empty production except one on the
// start symbol. For each nonterminal A that has one, every production using A
// is expanded into all the variants that keep or drop each occurrence of A.
// Each nonterminal is processed at most once.
func (g *Grammar[P]) removeEmptyProductions() error {
	eliminated := util.NewKeySet[Symbol]()

	for pass := 1; ; pass++ {
		target, found := g.nextNullable(eliminated)
		if !found {
			return nil
		}
		if err := g.checkIteration(pass); err != nil {
			return err
		}

		g.removeProduction(target, Seq(Empty))
		eliminated.Add(target)

		for _, head := range g.heads() {
			for _, p := range g.rules[head] {
				if !p.Contains(target) {
					continue
				}

				for _, v := range dropVariants(p, target) {
					if len(v) > 0 {
						g.addProduction(head, v)
					} else if head == g.start || !eliminated.Has(head) {
						g.addProduction(head, Seq(Empty))
					}
				}
			}
		}
	}
}

// nextNullable returns the non-start nonterminal with the lowest ID that has
// an Empty production and has not been eliminated.
func (g *Grammar[P]) nextNullable(eliminated SymbolSet) (Symbol, bool) {
	for _, head := range g.heads() {
		if head == g.start || eliminated.Has(head) {
			continue
		}
		for _, p := range g.rules[head] {
			if p.IsEmptyProduction() {
				return head, true
			}
		}
	}
	return Symbol{}, false
}

func (g *Grammar[P]) removeProduction(head Symbol, prod Sequence) {
	prods := g.rules[head]
	kept := make([]Sequence, 0, len(prods))
	for _, p := range prods {
		if !p.Equal(prod) {
			kept = append(kept, p)
		}
	}
	g.rules[head] = kept
}

// dropVariants returns every sequence made by removing some subset of the
// occurrences of s from p, including removing none and removing all.
func dropVariants(p Sequence, s Symbol) []Sequence {
	var positions []int
	for i := range p {
		if p[i] == s {
			positions = append(positions, i)
		}
	}

	var variants []Sequence
	for mask := 0; mask < 1<<len(positions); mask++ {
		drop := map[int]bool{}
		for bit, pos := range positions {
			if mask&(1<<bit) != 0 {
				drop[pos] = true
			}
		}

		v := make(Sequence, 0, len(p))
		for i := range p {
			if !drop[i] {
				v = append(v, p[i])
			}
		}
		variants = append(variants, v)
	}

	return variants
}

// removeUnitProductions replaces every production A -> B, where B is a
// nonterminal, with the non-unit productions of every nonterminal reachable
// from A through unit productions.
func (g *Grammar[P]) removeUnitProductions() error {
	if err := g.checkIteration(1); err != nil {
		return err
	}

	before := g.NonterminalRules()

	for _, head := range g.heads() {
		closure := g.unitClosure(before, head)
		if closure == nil {
			continue
		}

		var updated []Sequence
		for _, p := range before[head] {
			if !p.IsUnit(g) {
				updated = append(updated, p)
			}
		}
		for _, other := range closure {
			for _, p := range before[other] {
				if !p.IsUnit(g) {
					updated = append(updated, p.Copy())
				}
			}
		}

		g.rules[head] = updated
	}

	return nil
}

// unitClosure gives every nonterminal other than head that head can become
// through one or more unit productions, in breadth-first order. It returns nil
// if head has no unit productions at all.
func (g *Grammar[P]) unitClosure(rules map[Symbol][]Sequence, head Symbol) []Symbol {
	visited := util.NewKeySet[Symbol]()
	visited.Add(head)

	var closure []Symbol
	queue := []Symbol{head}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, p := range rules[cur] {
			if !p.IsUnit(g) || visited.Has(p[0]) {
				continue
			}
			visited.Add(p[0])
			closure = append(closure, p[0])
			queue = append(queue, p[0])
		}
	}

	// a head whose only unit productions are to itself still needs them
	// removed.
	if len(closure) == 0 {
		for _, p := range rules[head] {
			if p.IsUnit(g) {
				return []Symbol{}
			}
		}
		return nil
	}

	return closure
}

// aliveSymbols returns every nonterminal that derives at least one string of
// terminals. Empty counts as such a string.
func (g *Grammar[P]) aliveSymbols() SymbolSet {
	alive := util.NewKeySet[Symbol]()

	for changed := true; changed; {
		changed = false
		for _, head := range g.heads() {
			if alive.Has(head) {
				continue
			}
			for _, p := range g.rules[head] {
				if g.allAlive(p, alive) {
					alive.Add(head)
					changed = true
					break
				}
			}
		}
	}

	return alive
}

func (g *Grammar[P]) allAlive(p Sequence, alive SymbolSet) bool {
	for _, s := range p {
		if s.IsEmpty() || g.IsTerminal(s) {
			continue
		}
		if !alive.Has(s) {
			return false
		}
	}
	return true
}

// reachableSymbols returns every nonterminal that can be reached from the
// start symbol, including the start symbol.
func (g *Grammar[P]) reachableSymbols() SymbolSet {
	reached := util.NewKeySet[Symbol]()
	if !g.hasStart {
		return reached
	}

	reached.Add(g.start)
	queue := []Symbol{g.start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, p := range g.rules[cur] {
			for _, s := range p {
				if g.IsNonterminal(s) && !reached.Has(s) {
					reached.Add(s)
					queue = append(queue, s)
				}
			}
		}
	}

	return reached
}

// removeDeadSymbols removes every nonterminal that derives no string of
// terminals, along with every production that uses one.
func (g *Grammar[P]) removeDeadSymbols() {
	alive := g.aliveSymbols()
	g.pruneExcept(alive)
}

// removeUnreachableSymbols removes every nonterminal that cannot be reached
// from the start symbol.
func (g *Grammar[P]) removeUnreachableSymbols() {
	g.pruneExcept(g.reachableSymbols())
}

// pruneExcept removes the productions of every nonterminal not in keep, then
// every production that uses a nonterminal not in keep, then every
// nonterminal left with no productions.
func (g *Grammar[P]) pruneExcept(keep SymbolSet) {
	for _, head := range g.heads() {
		if !keep.Has(head) {
			delete(g.rules, head)
		}
	}

	for _, head := range g.heads() {
		prods := g.rules[head]
		kept := make([]Sequence, 0, len(prods))
		for _, p := range prods {
			usesRemoved := false
			for _, s := range p {
				if g.IsNonterminal(s) && !keep.Has(s) {
					usesRemoved = true
					break
				}
			}
			if !usesRemoved {
				kept = append(kept, p)
			}
		}

		if len(kept) == 0 {
			delete(g.rules, head)
		} else {
			g.rules[head] = kept
		}
	}
}
