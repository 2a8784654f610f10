package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_AddTerminal(t *testing.T) {
	testCases := []struct {
		name      string
		setup     func(g *Grammar[string]) Symbol
		expectErr error
	}{
		{
			name: "new terminal",
			setup: func(g *Grammar[string]) Symbol {
				return g.Pool().Symbol("a")
			},
		},
		{
			name: "empty is reserved",
			setup: func(g *Grammar[string]) Symbol {
				return Empty
			},
			expectErr: ErrReservedSymbol,
		},
		{
			name: "end of input is reserved",
			setup: func(g *Grammar[string]) Symbol {
				return EndOfInput
			},
			expectErr: ErrReservedSymbol,
		},
		{
			name: "already a terminal",
			setup: func(g *Grammar[string]) Symbol {
				a := g.Pool().Symbol("a")
				_ = g.AddTerminal(a, "first")
				return a
			},
			expectErr: ErrDuplicateTerminal,
		},
		{
			name: "already heads a rule",
			setup: func(g *Grammar[string]) Symbol {
				s := g.Pool().Symbol("S")
				_ = g.AddRule(s, g.Pool().Symbol("x"))
				return s
			},
			expectErr: ErrSymbolClass,
		},
		{
			name: "zero symbol",
			setup: func(g *Grammar[string]) Symbol {
				return Symbol{}
			},
			expectErr: ErrUnknownSymbol,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := New[string](nil)
			s := tc.setup(g)

			err := g.AddTerminal(s, "payload")

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.True(g.IsTerminal(s))
			payload, ok := g.Payload(s)
			assert.True(ok)
			assert.Equal("payload", payload)
		})
	}
}

func Test_Grammar_AddRule(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		lhs       string
		rhs       []string
		useLHS    *Symbol
		expectErr error
	}{
		{
			name: "plain rule",
			lhs:  "S",
			rhs:  []string{"A", "b"},
		},
		{
			name: "no symbols is empty",
			lhs:  "S",
		},
		{
			name: "explicit empty",
			lhs:  "S",
			rhs:  []string{"ε"},
		},
		{
			name:      "terminal head",
			terminals: []string{"a"},
			lhs:       "a",
			rhs:       []string{"b"},
			expectErr: ErrSymbolClass,
		},
		{
			name:      "empty mixed with symbols",
			lhs:       "S",
			rhs:       []string{"A", "ε"},
			expectErr: ErrMixedEmpty,
		},
		{
			name:      "empty head",
			useLHS:    &Empty,
			rhs:       []string{"a"},
			expectErr: ErrReservedSymbol,
		},
		{
			name:      "end of input head",
			useLHS:    &EndOfInput,
			rhs:       []string{"a"},
			expectErr: ErrReservedSymbol,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := setupGrammar(tc.terminals, nil, "")
			var lhs Symbol
			if tc.useLHS != nil {
				lhs = *tc.useLHS
			} else {
				lhs = g.Pool().Symbol(tc.lhs)
			}

			err := g.AddRule(lhs, syms(g.Pool(), tc.rhs)...)

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				assert.Zero(g.RuleCount())
				return
			}
			assert.NoError(err)
			assert.Equal(1, g.RuleCount())
		})
	}
}

func Test_Grammar_AddRule_EndOfInputInProduction(t *testing.T) {
	assert := assert.New(t)

	g := New[string](nil)

	err := g.AddRule(g.Pool().Symbol("S"), g.Pool().Symbol("a"), EndOfInput)

	assert.ErrorIs(err, ErrReservedSymbol)
}

func Test_Grammar_AddRule_DuplicateIsIgnored(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> A a"}, "")
	err := g.AddRule(g.Pool().Symbol("S"), seqOf(g.Pool(), "A a")...)

	assert.NoError(err)
	assert.Equal(1, g.RuleCount())
	assert.Len(g.Productions(g.Pool().Symbol("S")), 1)
}

func Test_Grammar_SetStart(t *testing.T) {
	testCases := []struct {
		name      string
		start     func(g *Grammar[string]) Symbol
		expectErr error
	}{
		{
			name:  "rule head",
			start: func(g *Grammar[string]) Symbol { return g.Pool().Symbol("S") },
		},
		{
			name:  "nonterminal only on right side",
			start: func(g *Grammar[string]) Symbol { return g.Pool().Symbol("A") },
		},
		{
			name:      "not in vocabulary",
			start:     func(g *Grammar[string]) Symbol { return g.Pool().Symbol("Q") },
			expectErr: ErrUnknownSymbol,
		},
		{
			name:      "terminal",
			start:     func(g *Grammar[string]) Symbol { return g.Pool().Symbol("a") },
			expectErr: ErrSymbolClass,
		},
		{
			name:      "empty",
			start:     func(g *Grammar[string]) Symbol { return Empty },
			expectErr: ErrSymbolClass,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := New[string](nil)
			_ = g.AddTerminal(g.Pool().Symbol("a"), "a")
			_ = g.AddRule(g.Pool().Symbol("S"), seqOf(g.Pool(), "A a")...)
			s := tc.start(g)

			err := g.SetStart(s)

			start, hasStart := g.Start()
			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				assert.False(hasStart)
				return
			}
			assert.NoError(err)
			assert.True(hasStart)
			assert.Equal(s, start)
			assert.Equal(0, g.Rank(s))
		})
	}
}

func Test_Grammar_Vocabulary(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a", "b"}, []string{
		"S -> A a | ε",
		"A -> b",
	}, "")
	p := g.Pool()

	vocab := g.Vocabulary()

	assert.ElementsMatch(append(p.Symbols("S", "A", "a", "b"), Empty), vocab.Elements())
	assert.True(vocab.Has(Empty))
	assert.ElementsMatch(p.Symbols("a", "b"), g.TerminalSymbols().Elements())
	assert.Equal(p.Symbols("S", "A"), g.Nonterminals())
	assert.Equal(p.Symbols("a", "b"), g.Terminals())
}

func Test_Grammar_CopiesAreIndependent(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> A a | a", "A -> a"}, "")
	s := g.Pool().Symbol("S")

	rules := g.NonterminalRules()
	rules[s][0][0] = g.Pool().Symbol("X")
	delete(rules, g.Pool().Symbol("A"))

	prods := g.Productions(s)
	prods[1] = Seq(Empty)

	cp := g.Copy()
	_ = cp.AddRule(s, Empty)

	assert.Equal([]string{"S -> A a | a", "A -> a"}, ruleStrings(g))
	assert.Equal([]string{"S -> A a | a | ε", "A -> a"}, ruleStrings(cp))
}

func Test_Grammar_Render(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> A a | ε"}, "")
	p := g.Pool()

	assert.Equal("<S>", g.Render(p.Symbol("S")))
	assert.Equal("a", g.Render(p.Symbol("a")))
	assert.Equal("ε", g.Render(Empty))
	assert.Equal("$", g.Render(EndOfInput))
	assert.Equal("<A>a", g.RenderSequence(seqOf(p, "A a")))
}

func Test_Grammar_String(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> A a | ε", "A -> a"}, "")

	expect := "[nonterminal symbols]\n" +
		"<S>\n" +
		"<A>\n" +
		"\n[terminal symbols]\n" +
		"a\n" +
		"\n[production]\n" +
		"<S> -> <A>a\n" +
		"<S> -> ε\n" +
		"<A> -> a\n" +
		"\n[start symbol]\n" +
		"<S>\n"

	assert.Equal(expect, g.String())
}

func Test_Grammar_ValidateCNF(t *testing.T) {
	testCases := []struct {
		name      string
		rules     []string
		expectErr bool
	}{
		{name: "two nonterminals", rules: []string{"S -> A B", "A -> a", "B -> a"}},
		{name: "empty on start", rules: []string{"S -> A A | ε", "A -> a"}},
		{name: "empty on non-start", rules: []string{"S -> A A", "A -> a | ε"}, expectErr: true},
		{name: "unit", rules: []string{"S -> A", "A -> a"}, expectErr: true},
		{name: "too long", rules: []string{"S -> A A A", "A -> a"}, expectErr: true},
		{name: "terminal in pair", rules: []string{"S -> A a", "A -> a"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := setupGrammar([]string{"a"}, tc.rules, "")

			err := g.ValidateCNF()

			if tc.expectErr {
				assert.ErrorIs(err, ErrNotNormalized)
			} else {
				assert.NoError(err)
			}
		})
	}
}
