package report

import (
	"strings"
	"testing"

	"github.com/dekarrin/chomsky/grammar"
	"github.com/stretchr/testify/assert"
)

func setupGrammar() *grammar.Grammar[string] {
	g := grammar.New[string](nil)
	p := g.Pool()

	_ = g.AddTerminal(p.Symbol("a"), "LETTER_A")
	_ = g.AddTerminal(p.Symbol("b"), "LETTER_B")
	_ = g.AddRule(p.Symbol("S"), p.Symbols("a", "S", "b")...)
	_ = g.AddRule(p.Symbol("S"))
	_ = g.SetStart(p.Symbol("S"))

	return g
}

func Test_RuleTable(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar()

	actual := RuleTable(g, 80)

	assert.Contains(actual, "NONTERMINAL")
	assert.Contains(actual, "PRODUCTIONS")
	assert.Contains(actual, "<S>")
	assert.Contains(actual, "a <S> b | ε")
}

func Test_TerminalTable(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar()

	actual := TerminalTable(g, 80)

	assert.Contains(actual, "LETTER_A")
	assert.Contains(actual, "LETTER_B")
}

func Test_Summary(t *testing.T) {
	assert := assert.New(t)

	before := setupGrammar()
	after := before.Copy()
	if !assert.NoError(after.ToChomskyNormalForm()) {
		return
	}

	actual := Summary(before, after, 80)

	assert.Contains(actual, "Productions")
	assert.Contains(actual, "2 => ")
	assert.Contains(actual, "<S> => <start$1>")
}

func Test_Dump(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar()

	actual := Dump(g, 80)

	assert.Equal("start: <S>\n<S> -> a <S> b\n<S> -> ε\n", actual)
}

func Test_Dump_WrapsLongProductions(t *testing.T) {
	assert := assert.New(t)

	g := grammar.New[string](nil)
	p := g.Pool()
	long := p.Symbols("Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel")
	_ = g.AddRule(p.Symbol("S"), long...)

	actual := Dump(g, 30)

	lines := strings.Split(strings.TrimRight(actual, "\n"), "\n")
	assert.Greater(len(lines), 1)
	assert.Contains(actual, "<Alpha>")
	assert.Contains(actual, "<Hotel>")
}
