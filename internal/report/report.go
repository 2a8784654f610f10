// Package report renders grammars as text tables and listings for display at
// a terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/dekarrin/chomsky/grammar"
	"github.com/dekarrin/rosed"
)

// DefaultWidth is the width reports are laid out for when no other is given.
const DefaultWidth = 80

// RuleTable returns a table with one row per nonterminal of g, giving its rank
// and its productions.
func RuleTable[P any](g *grammar.Grammar[P], width int) string {
	if width < 1 {
		width = DefaultWidth
	}

	data := [][]string{{"Nonterminal", "Rank", "Productions"}}

	for _, r := range g.Rules() {
		prods := make([]string, len(r.Productions))
		for i := range r.Productions {
			prods[i] = renderSpaced(g, r.Productions[i])
		}

		rank := "-"
		if rk := g.Rank(r.Head); rk >= 0 {
			rank = fmt.Sprintf("%d", rk)
		}

		data = append(data, []string{g.Render(r.Head), rank, strings.Join(prods, " | ")})
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, width, tableOpts).
		String()
}

// TerminalTable returns a table of the terminals of g and their payloads.
func TerminalTable[P any](g *grammar.Grammar[P], width int) string {
	if width < 1 {
		width = DefaultWidth
	}

	data := [][]string{{"Terminal", "Class"}}
	for _, t := range g.Terminals() {
		payload, _ := g.Payload(t)
		data = append(data, []string{g.Render(t), fmt.Sprintf("%v", payload)})
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, width, tableOpts).
		String()
}

// Summary returns a definitions list comparing the size of a grammar before
// and after it was normalized.
func Summary[P any](before, after *grammar.Grammar[P], width int) string {
	if width < 1 {
		width = DefaultWidth
	}

	startOf := func(g *grammar.Grammar[P]) string {
		if s, ok := g.Start(); ok {
			return g.Render(s)
		}
		return "(none)"
	}

	info := [][2]string{
		{"Start", fmt.Sprintf("%s => %s", startOf(before), startOf(after))},
		{"Nonterminals", fmt.Sprintf("%d => %d", len(before.Nonterminals()), len(after.Nonterminals()))},
		{"Terminals", fmt.Sprintf("%d => %d", len(before.Terminals()), len(after.Terminals()))},
		{"Productions", fmt.Sprintf("%d => %d", before.RuleCount(), after.RuleCount())},
	}

	tableOpts := rosed.Options{ParagraphSeparator: "\n", NoTrailingLineSeparators: true}
	return rosed.Edit("").
		InsertDefinitionsTableOpts(0, info, width, tableOpts).
		String()
}

// Dump returns a listing of every production of g, one per line, with the
// symbols of each production separated by spaces. Productions too long for
// width are wrapped onto indented continuation lines.
func Dump[P any](g *grammar.Grammar[P], width int) string {
	if width < 1 {
		width = DefaultWidth
	}

	var sb strings.Builder
	if start, ok := g.Start(); ok {
		sb.WriteString(fmt.Sprintf("start: %s\n", g.Render(start)))
	}

	for _, r := range g.Rules() {
		head := g.Render(r.Head) + " -> "
		for _, p := range r.Productions {
			line := head + renderSpaced(g, p)
			if len(line) > width {
				line = rosed.Edit(line).
					WrapOpts(width, rosed.Options{IndentStr: "    "}).
					String()
			}
			sb.WriteString(line)
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

func renderSpaced[P any](g *grammar.Grammar[P], seq grammar.Sequence) string {
	shown := make([]string, len(seq))
	for i := range seq {
		shown[i] = g.Render(seq[i])
	}
	return strings.Join(shown, " ")
}
