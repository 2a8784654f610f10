package cfgfile

import (
	"fmt"
	"strings"

	"github.com/dekarrin/chomsky/grammar"
)

// EmptyName is how the empty string is written in a rule.
var EmptyName = grammar.Empty.Name()

// RuleDef is one rule as written in a CFG file: a head and one or more
// alternative productions, each a list of symbol names. An empty production
// is written as ε and stored as a list with no names.
type RuleDef struct {
	Head         string
	Alternatives [][]string
}

// String gives the rule in the notation ParseRule reads.
func (r RuleDef) String() string {
	var sb strings.Builder
	sb.WriteString(r.Head)
	sb.WriteString(" ->")

	for i, alt := range r.Alternatives {
		if i > 0 {
			sb.WriteString(" |")
		}
		if len(alt) == 0 {
			sb.WriteRune(' ')
			sb.WriteString(EmptyName)
			continue
		}
		for _, name := range alt {
			sb.WriteRune(' ')
			sb.WriteString(name)
		}
	}

	return sb.String()
}

// MustParseRule is ParseRule but it panics if the rule cannot be parsed.
func MustParseRule(s string) RuleDef {
	r, err := ParseRule(s)
	if err != nil {
		panic(err.Error())
	}
	return r
}

// ParseRule parses a rule of the form "HEAD -> ALT | ALT | ...", where each
// ALT is a list of whitespace-separated symbol names and ε stands for the
// empty string. Alternatives may span multiple lines.
func ParseRule(s string) (RuleDef, error) {
	sides := strings.Split(s, "->")
	if len(sides) != 2 {
		return RuleDef{}, invalidf("not a rule of form 'HEAD -> ALPHA | BETA': %q", s)
	}

	head := strings.TrimSpace(sides[0])
	if head == "" {
		return RuleDef{}, invalidf("empty head not allowed in rule %q", s)
	}
	if err := CheckSymbolName(head); err != nil {
		return RuleDef{}, fmt.Errorf("head of rule %q: %w", s, err)
	}
	if head == EmptyName {
		return RuleDef{}, invalidf("%s cannot head a rule", EmptyName)
	}

	r := RuleDef{Head: head}

	for i, altStr := range strings.Split(sides[1], "|") {
		names := strings.Fields(altStr)
		if len(names) == 0 {
			return RuleDef{}, invalidf("rule %q: alternative %d is blank; write %s for the empty string", head, i+1, EmptyName)
		}

		if len(names) == 1 && names[0] == EmptyName {
			r.Alternatives = append(r.Alternatives, []string{})
			continue
		}

		for _, n := range names {
			if n == EmptyName {
				return RuleDef{}, invalidf("rule %q: alternative %d: %s must appear alone", head, i+1, EmptyName)
			}
			if err := CheckSymbolName(n); err != nil {
				return RuleDef{}, fmt.Errorf("rule %q: alternative %d: %w", head, i+1, err)
			}
		}
		r.Alternatives = append(r.Alternatives, names)
	}

	return r, nil
}

// CheckSymbolName returns an error if name cannot be used as a symbol in a
// CFG file.
func CheckSymbolName(name string) error {
	if name == "" {
		return invalidf("symbol name cannot be blank")
	}
	if name == grammar.EndOfInput.Name() {
		return invalidf("%q is reserved for the end of input", name)
	}
	if strings.ContainsAny(name, "|") || strings.Contains(name, "->") {
		return invalidf("symbol name %q contains '|' or '->'", name)
	}
	if len(strings.Fields(name)) != 1 {
		return invalidf("symbol name %q contains whitespace", name)
	}
	return nil
}
