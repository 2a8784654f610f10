package cfgfile

import (
	"fmt"
	"strings"

	"github.com/dekarrin/chomsky/grammar"
)

// TerminalDef is a terminal declared in a CFG file. Class is the payload the
// terminal carries in the built grammar; it defaults to the symbol itself.
type TerminalDef struct {
	Symbol string
	Class  string
}

// Definition is a complete grammar as read from one or more CFG files.
type Definition struct {
	Name      string
	Start     string
	Terminals []TerminalDef
	Rules     []RuleDef
}

// NewDefinition checks a grammar given directly instead of from a file, with
// each rule in the notation ParseRule reads. It follows the same rules as
// loading a file: a blank class defaults to the symbol and a blank start to the
// head of the first rule.
func NewDefinition(name, start string, terminals []TerminalDef, rules []string) (Definition, error) {
	cfg := topLevelGrammar{
		Name:  name,
		Start: start,
		Rules: rules,
	}
	for _, t := range terminals {
		cfg.Terminals = append(cfg.Terminals, terminal{Symbol: t.Symbol, Class: t.Class})
	}
	return parseDefinition(cfg)
}

// parseDefinition checks an unmarshaled grammar and converts it to a
// Definition. If no start symbol is given, the head of the first rule is used.
func parseDefinition(cfg topLevelGrammar) (Definition, error) {
	def := Definition{
		Name:  cfg.Name,
		Start: strings.TrimSpace(cfg.Start),
	}

	seenTerms := map[string]bool{}
	for i, t := range cfg.Terminals {
		if err := CheckSymbolName(t.Symbol); err != nil {
			return def, fmt.Errorf("terminal[%d]: %w", i, err)
		}
		if t.Symbol == EmptyName {
			return def, fmt.Errorf("terminal[%d]: %w", i, invalidf("%s cannot be a terminal", EmptyName))
		}
		if seenTerms[t.Symbol] {
			return def, fmt.Errorf("terminal[%d]: %w", i, invalidf("duplicate terminal %q", t.Symbol))
		}
		seenTerms[t.Symbol] = true

		class := t.Class
		if class == "" {
			class = t.Symbol
		}
		def.Terminals = append(def.Terminals, TerminalDef{Symbol: t.Symbol, Class: class})
	}

	for i, ruleStr := range cfg.Rules {
		r, err := ParseRule(ruleStr)
		if err != nil {
			return def, fmt.Errorf("rules[%d]: %w", i, err)
		}
		if seenTerms[r.Head] {
			return def, fmt.Errorf("rules[%d]: %w", i, invalidf("terminal %q cannot head a rule", r.Head))
		}
		def.Rules = append(def.Rules, r)
	}

	if len(def.Rules) < 1 {
		return def, invalidf("no rules given")
	}

	if def.Start == "" {
		def.Start = def.Rules[0].Head
	}
	if seenTerms[def.Start] {
		return def, invalidf("start: %q is a terminal", def.Start)
	}

	return def, nil
}

// Build creates a grammar from the definition. Symbols are interned in pool; if
// pool is nil, a new one is used. Each terminal's payload is its class.
func (def Definition) Build(pool *grammar.Pool) (*grammar.Grammar[string], error) {
	g := grammar.New[string](pool)
	p := g.Pool()

	for _, t := range def.Terminals {
		if err := g.AddTerminal(p.Symbol(t.Symbol), t.Class); err != nil {
			return nil, err
		}
	}

	for _, r := range def.Rules {
		head := p.Symbol(r.Head)
		for _, alt := range r.Alternatives {
			if err := g.AddRule(head, p.Symbols(alt...)...); err != nil {
				return nil, err
			}
		}
	}

	if def.Start != "" {
		if err := g.SetStart(p.Symbol(def.Start)); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// FromGrammar creates a Definition that builds a grammar with the same
// terminals, rules, and start symbol as g. Terminal classes are the payloads
// of g formatted with %v.
func FromGrammar[P any](name string, g *grammar.Grammar[P]) Definition {
	def := Definition{Name: name}

	if start, ok := g.Start(); ok {
		def.Start = start.Name()
	}

	for _, t := range g.Terminals() {
		payload, _ := g.Payload(t)
		def.Terminals = append(def.Terminals, TerminalDef{
			Symbol: t.Name(),
			Class:  fmt.Sprintf("%v", payload),
		})
	}

	for _, r := range g.Rules() {
		rd := RuleDef{Head: r.Head.Name()}
		for _, prod := range r.Productions {
			var alt []string
			if prod.IsEmptyProduction() {
				alt = []string{}
			} else {
				for _, s := range prod {
					alt = append(alt, s.Name())
				}
			}
			rd.Alternatives = append(rd.Alternatives, alt)
		}
		def.Rules = append(def.Rules, rd)
	}

	return def
}

// MarshalTOML encodes the definition as a GRAMMAR type CFG file. Terminals
// whose class is the same as their symbol are written without a class.
func (def Definition) MarshalTOML() ([]byte, error) {
	cfg := topLevelGrammar{
		Format: FormatName,
		Type:   TypeGrammar,
		Name:   def.Name,
		Start:  def.Start,
		Rules:  make([]string, len(def.Rules)),
	}

	for i, r := range def.Rules {
		cfg.Rules[i] = r.String()
	}
	for _, t := range def.Terminals {
		ct := terminal{Symbol: t.Symbol}
		if t.Class != t.Symbol {
			ct.Class = t.Class
		}
		cfg.Terminals = append(cfg.Terminals, ct)
	}

	return marshalGrammar(cfg)
}
