package grammar

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_ToChomskyNormalForm_NoStart(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, nil, "")
	_ = g.AddRule(g.Pool().Symbol("S"), g.Pool().Symbol("a"))
	before := g.String()

	err := g.ToChomskyNormalForm()

	assert.ErrorIs(err, ErrNoStartSymbol)
	assert.Equal(before, g.String())
}

func Test_Grammar_ToChomskyNormalForm_EmptyExpansion(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"c"}, []string{
		"A -> B c",
		"B -> ε",
	}, "")

	err := g.ToChomskyNormalForm()

	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"A -> c"}, ruleStrings(g))
}

func Test_Grammar_isolateTerminals(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a", "b"}, []string{
		"S -> a B a | b",
		"B -> b",
	}, "S")
	p := g.Pool()

	err := g.isolateTerminals()

	if !assert.NoError(err) {
		return
	}
	term := p.Symbol("term$1")
	assert.Equal([]Sequence{
		Seq(term, p.Symbol("B"), term),
		Seq(p.Symbol("b")),
	}, g.Productions(p.Symbol("S")))
	assert.Equal([]Sequence{Seq(p.Symbol("b"))}, g.Productions(p.Symbol("B")))
	assert.Equal([]Sequence{Seq(p.Symbol("a"))}, g.Productions(term))
	assert.False(p.Has("term$2"))
}

func Test_Grammar_ToChomskyNormalForm(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		maxLen    int
	}{
		{
			name:      "left recursion through four nonterminals",
			terminals: []string{"a", "b", "c", "d"},
			rules: []string{
				"A1 -> A2 a | a",
				"A2 -> A3 b | b",
				"A3 -> A4 c | c",
				"A4 -> A1 d | d",
			},
			maxLen: 9,
		},
		{
			name:      "arithmetic expressions",
			terminals: []string{"(", ")", "+", "-", "*", "/", "intnum"},
			rules: []string{
				"E0 -> T0 E1",
				"E1 -> + T0 E1 | - T0 E1 | ε",
				"T0 -> F T1",
				"T1 -> * F T1 | / F T1 | ε",
				"F -> intnum | ( E0 )",
			},
			maxLen: 5,
		},
		{
			name:      "start on right side and empty",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a S b | ε",
			},
			maxLen: 8,
		},
		{
			name:      "nullable cycle",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> A B | a",
				"A -> B | ε",
				"B -> A | b",
			},
			maxLen: 4,
		},
		{
			name:      "unit cycle",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> A",
				"A -> B | a",
				"B -> S | b",
			},
			maxLen: 3,
		},
		{
			name:      "dead and unreachable nonterminals",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a | D | a D",
				"D -> D a",
				"U -> b",
			},
			maxLen: 4,
		},
		{
			name:      "long production",
			terminals: []string{"a", "b", "c", "d", "e"},
			rules: []string{
				"S -> a b c d e | a b",
			},
			maxLen: 6,
		},
		{
			name:      "multiple nullables in one production",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> A a A b A",
				"A -> a | ε",
			},
			maxLen: 6,
		},
		{
			name:      "deeba kannan's epsilon elimination example",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> A C A | A a",
				"A -> B B | ε",
				"B -> A | b C",
				"C -> b",
			},
			maxLen: 6,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := setupGrammar(tc.terminals, tc.rules, "")
			expectLang := boundedLanguage(g, tc.maxLen)

			err := g.ToChomskyNormalForm()

			if !assert.NoError(err) {
				return
			}
			assert.NoError(g.ValidateCNF())
			assert.Equal(expectLang, boundedLanguage(g, tc.maxLen))
			assertNoLeftovers(t, g)
		})
	}
}

// assertNoLeftovers checks that every nonterminal in g heads a production,
// derives a string of terminals, and is reachable from the start symbol, and
// that the start symbol is not on the right side of any production.
func assertNoLeftovers[P any](t *testing.T, g *Grammar[P]) {
	assert := assert.New(t)

	start, _ := g.Start()
	alive := g.aliveSymbols()
	reachable := g.reachableSymbols()

	for _, nt := range g.Nonterminals() {
		assert.NotEmpty(g.Productions(nt), "%s has no productions", nt)
		assert.True(alive.Has(nt), "%s is dead", nt)
		assert.True(reachable.Has(nt), "%s is unreachable", nt)
		assert.GreaterOrEqual(g.Rank(nt), 0, "%s has no rank", nt)
	}

	for _, r := range g.Rules() {
		for _, p := range r.Productions {
			assert.False(p.Contains(start), "start symbol used in %s -> %s", r.Head, p)
		}
	}
}

func Test_Grammar_ToChomskyNormalForm_EmptyLanguage(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> S a"}, "")

	err := g.ToChomskyNormalForm()

	assert.NoError(err)
	assert.Zero(g.RuleCount())
	_, hasStart := g.Start()
	assert.True(hasStart)
}

func Test_Grammar_ToChomskyNormalForm_KeepsStartEmpty(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> a S | ε"}, "")

	err := g.ToChomskyNormalForm()
	if !assert.NoError(err) {
		return
	}

	start, _ := g.Start()
	assert.NotEqual("S", start.Name())
	assert.True(strings.HasPrefix(start.Name(), "start$"))
	assert.Contains(g.Productions(start), Seq(Empty))
}

func Test_Grammar_ToChomskyNormalForm_ReusesPairs(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a", "b", "c", "d"}, []string{
		"S -> a b c | d b c",
	}, "")

	err := g.ToChomskyNormalForm()
	if !assert.NoError(err) {
		return
	}

	binHeads := 0
	termHeads := 0
	for _, nt := range g.Nonterminals() {
		if strings.HasPrefix(nt.Name(), "bin$") {
			binHeads++
		}
		if strings.HasPrefix(nt.Name(), "term$") {
			termHeads++
		}
	}
	assert.Equal(1, binHeads)
	assert.Equal(4, termHeads)
}

func Test_Grammar_ToChomskyNormalForm_FreshNamesAvoidPool(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a", "b"}, []string{
		"S -> term$1 a",
		"term$1 -> b",
	}, "")

	err := g.ToChomskyNormalForm()
	if !assert.NoError(err) {
		return
	}

	p := g.Pool()
	assert.Equal([]Sequence{seqOf(p, "a")}, g.Productions(p.Symbol("term$2")))
	assert.Equal([]Sequence{seqOf(p, "b")}, g.Productions(p.Symbol("term$1")))
}

func Test_Grammar_ToChomskyNormalForm_IterationLimit(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a", "b", "c", "d", "e"}, []string{
		"S -> a b c d e",
	}, "")
	g.SetIterationLimit(1)
	before := g.String()

	err := g.ToChomskyNormalForm()

	assert.ErrorIs(err, ErrIterationLimit)
	assert.Equal(before, g.String())
}

func Test_Grammar_ToChomskyNormalForm_IsIdempotent(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a", "b"}, []string{
		"S -> a S b | a b | ε",
	}, "")

	if !assert.NoError(g.ToChomskyNormalForm()) {
		return
	}
	once := ruleStrings(g)

	if !assert.NoError(g.ToChomskyNormalForm()) {
		return
	}

	assert.Equal(once, ruleStrings(g))
}

func Test_Grammar_ToChomskyNormalForm_Logs(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	g := setupGrammar([]string{"a"}, []string{"S -> a"}, "")
	g.SetLogger(log.New(&buf, "", 0))

	err := g.ToChomskyNormalForm()

	assert.NoError(err)
	assert.Contains(buf.String(), "DEBUG rank stage complete")
	assert.Contains(buf.String(), "DEBUG rerank stage complete: 1 nonterminals, 1 productions")
}

func Test_dropVariants(t *testing.T) {
	assert := assert.New(t)

	p := NewPool()
	a := p.Symbol("A")

	variants := dropVariants(seqOf(p, "A x A"), a)

	var shown []string
	for _, v := range variants {
		shown = append(shown, v.String())
	}
	assert.ElementsMatch([]string{"AxA", "xA", "Ax", "x"}, shown)
}
