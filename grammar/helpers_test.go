package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// setupGrammar builds a grammar from rules written as "S -> A a | ε". Every
// name in terminals becomes a terminal whose payload is its own name. The
// head of the first rule becomes the start symbol unless start is given.
func setupGrammar(terminals []string, rules []string, start string) *Grammar[string] {
	g := New[string](nil)

	for _, t := range terminals {
		if err := g.AddTerminal(g.Pool().Symbol(t), t); err != nil {
			panic(err.Error())
		}
	}

	for i, r := range rules {
		head, alts := mustParseRule(r)
		for _, alt := range alts {
			if err := g.AddRule(g.Pool().Symbol(head), syms(g.Pool(), alt)...); err != nil {
				panic(err.Error())
			}
		}
		if i == 0 && start == "" {
			start = head
		}
	}

	if start != "" {
		if err := g.SetStart(g.Pool().Symbol(start)); err != nil {
			panic(err.Error())
		}
	}

	return g
}

// mustParseRule splits "S -> A a | ε" into its head and the names of each
// alternative.
func mustParseRule(r string) (string, [][]string) {
	sides := strings.Split(r, "->")
	if len(sides) != 2 {
		panic(fmt.Sprintf("not a rule: %q", r))
	}

	head := strings.TrimSpace(sides[0])
	var alts [][]string
	for _, alt := range strings.Split(sides[1], "|") {
		alts = append(alts, strings.Fields(alt))
	}
	return head, alts
}

// syms interns each name, with "ε" giving Empty.
func syms(p *Pool, names []string) []Symbol {
	var out []Symbol
	for _, n := range names {
		if n == Empty.Name() {
			out = append(out, Empty)
		} else {
			out = append(out, p.Symbol(n))
		}
	}
	return out
}

// seqOf builds a sequence from space-separated names.
func seqOf(p *Pool, names string) Sequence {
	return Seq(syms(p, strings.Fields(names))...)
}

// ruleStrings gives every rule of g in "A -> x | y" form, as setupGrammar
// takes.
func ruleStrings[P any](g *Grammar[P]) []string {
	var out []string
	for _, r := range g.Rules() {
		out = append(out, r.String())
	}
	return out
}

// boundedLanguage gives every string of terminals of at most maxLen symbols
// that the start symbol of g derives, as sorted space-separated names.
func boundedLanguage[P any](g *Grammar[P], maxLen int) []string {
	lang := map[Symbol]map[string]Sequence{}

	for changed := true; changed; {
		changed = false
		for _, head := range g.heads() {
			for _, p := range g.rules[head] {
				for _, str := range expandBounded(g, lang, p, maxLen) {
					if lang[head] == nil {
						lang[head] = map[string]Sequence{}
					}
					k := str.Key()
					if _, ok := lang[head][k]; !ok {
						lang[head][k] = str
						changed = true
					}
				}
			}
		}
	}

	start, _ := g.Start()
	var out []string
	for _, str := range lang[start] {
		names := make([]string, len(str))
		for i := range str {
			names[i] = str[i].Name()
		}
		out = append(out, strings.Join(names, " "))
	}
	sort.Strings(out)
	return out
}

func expandBounded[P any](g *Grammar[P], lang map[Symbol]map[string]Sequence, p Sequence, maxLen int) []Sequence {
	partial := []Sequence{{}}

	for _, s := range p {
		if s.IsEmpty() {
			continue
		}

		var opts []Sequence
		if g.IsTerminal(s) {
			opts = []Sequence{Seq(s)}
		} else {
			for _, str := range lang[s] {
				opts = append(opts, str)
			}
		}

		var next []Sequence
		for _, a := range partial {
			for _, b := range opts {
				if len(a)+len(b) > maxLen {
					continue
				}
				joined := make(Sequence, 0, len(a)+len(b))
				joined = append(joined, a...)
				joined = append(joined, b...)
				next = append(next, joined)
			}
		}
		partial = next
	}

	return partial
}

// naiveIndexAll finds non-overlapping occurrences of pattern in text by
// checking every position.
func naiveIndexAll(text, pattern Sequence) []int {
	var found []int
	for i := 0; i+len(pattern) <= len(text); {
		if text[i:i+len(pattern)].Equal(pattern) {
			found = append(found, i)
			i += len(pattern)
		} else {
			i++
		}
	}
	return found
}
