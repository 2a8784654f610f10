// Package chomsky converts context-free grammars to Chomsky Normal Form.
//
// Grammars are read from CFG files, TOML documents that declare terminals and
// list rules in a "HEAD -> ALT | ALT" notation:
//
//	format = "CFG"
//	type = "GRAMMAR"
//
//	name = "balanced"
//	start = "S"
//	rules = ["S -> a S b | ε"]
//
//	[[terminal]]
//	symbol = "a"
//
//	[[terminal]]
//	symbol = "b"
//
// A Normalizer holds a grammar along with its normalized form. For more
// control over the grammar itself, use package grammar directly.
package chomsky

import (
	"fmt"
	"log"

	"github.com/dekarrin/chomsky/grammar"
	"github.com/dekarrin/chomsky/internal/cfgfile"
	"github.com/dekarrin/chomsky/internal/report"
)

// Normalizer converts one grammar to Chomsky Normal Form. The grammar it was
// created with is never modified; Normalize works on a copy.
type Normalizer struct {
	// IterationLimit bounds the passes each normalization stage may make. 0
	// means no limit.
	IterationLimit int

	// Logger, if set, receives a line after each normalization stage.
	Logger *log.Logger

	// Width is the width used for Before and After. Defaults to 80.
	Width int

	name       string
	original   *grammar.Grammar[string]
	normalized *grammar.Grammar[string]
}

// Result is the outcome of normalizing a grammar.
type Result struct {
	// Name is the name of the grammar as given in its file.
	Name string

	// Original is the grammar as loaded.
	Original *grammar.Grammar[string]

	// Normalized is the grammar in Chomsky Normal Form.
	Normalized *grammar.Grammar[string]
}

// LoadFile creates a Normalizer for the grammar in the CFG file at path. If
// the file is a manifest, every file it lists is loaded and merged.
func LoadFile(path string) (*Normalizer, error) {
	def, err := cfgfile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromDefinition(def)
}

// FromDefinition creates a Normalizer for the grammar described by def.
func FromDefinition(def cfgfile.Definition) (*Normalizer, error) {
	g, err := def.Build(nil)
	if err != nil {
		return nil, fmt.Errorf("build grammar %q: %w", def.Name, err)
	}
	return FromGrammar(def.Name, g), nil
}

// FromGrammar creates a Normalizer for g. g is not modified by the
// Normalizer.
func FromGrammar(name string, g *grammar.Grammar[string]) *Normalizer {
	return &Normalizer{
		name:     name,
		original: g,
	}
}

// NormalizeFile loads the CFG file at path and normalizes it.
func NormalizeFile(path string) (Result, error) {
	n, err := LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	if err := n.Normalize(); err != nil {
		return Result{}, err
	}
	return n.Result(), nil
}

// Normalize converts a copy of the original grammar to Chomsky Normal Form.
// Calling it again redoes the conversion.
func (n *Normalizer) Normalize() error {
	work := n.original.Copy()
	work.SetIterationLimit(n.IterationLimit)
	work.SetLogger(n.Logger)

	if err := work.ToChomskyNormalForm(); err != nil {
		return fmt.Errorf("normalize %q: %w", n.name, err)
	}

	// stops later copies from logging to somewhere the caller forgot about
	work.SetLogger(nil)

	n.normalized = work
	return nil
}

// Name returns the name of the grammar.
func (n *Normalizer) Name() string {
	return n.name
}

// Original returns the grammar as it was given.
func (n *Normalizer) Original() *grammar.Grammar[string] {
	return n.original
}

// Normalized returns the normalized grammar, or nil if Normalize has not
// succeeded yet.
func (n *Normalizer) Normalized() *grammar.Grammar[string] {
	return n.normalized
}

// Result returns the original and normalized grammars. Normalized is nil if
// Normalize has not succeeded yet.
func (n *Normalizer) Result() Result {
	return Result{
		Name:       n.name,
		Original:   n.original,
		Normalized: n.normalized,
	}
}

// Before returns a listing of every production of the original grammar.
func (n *Normalizer) Before() string {
	return report.Dump(n.original, n.Width)
}

// After returns a listing of every production of the normalized grammar. If
// Normalize has not succeeded, it returns an empty string.
func (n *Normalizer) After() string {
	if n.normalized == nil {
		return ""
	}
	return report.Dump(n.normalized, n.Width)
}

// Dump returns a listing of every production of the normalized grammar.
func (r Result) Dump(width int) string {
	return report.Dump(r.Normalized, width)
}

// Table returns the normalized grammar as rule and terminal tables.
func (r Result) Table(width int) string {
	out := report.RuleTable(r.Normalized, width)
	if len(r.Normalized.Terminals()) > 0 {
		out += "\n\n" + report.TerminalTable(r.Normalized, width)
	}
	return out
}

// Summary compares the size of the grammar before and after normalization.
func (r Result) Summary(width int) string {
	return report.Summary(r.Original, r.Normalized, width)
}

// MarshalTOML encodes the normalized grammar as a CFG file.
func (r Result) MarshalTOML() ([]byte, error) {
	return cfgfile.FromGrammar(r.Name, r.Normalized).MarshalTOML()
}
