package shell

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dekarrin/chomsky/grammar"
	"github.com/dekarrin/chomsky/internal/cfgfile"
	"github.com/dekarrin/chomsky/internal/cnferrors"
	"github.com/dekarrin/chomsky/internal/report"
	"github.com/dekarrin/chomsky/internal/util"
	"github.com/dekarrin/rosed"
)

// Session is the grammar being built at the shell along with the result of
// the last NORMALIZE. Any change to the grammar discards that result.
type Session struct {
	// Name is written to files made with SAVE.
	Name string

	// Width is the width output is laid out for.
	Width int

	// IterationLimit is passed to the grammar on NORMALIZE. 0 is no limit.
	IterationLimit int

	// Logger, if set, receives the per-stage lines of NORMALIZE.
	Logger *log.Logger

	g          *grammar.Grammar[string]
	normalized *grammar.Grammar[string]
}

// commandHelp is the one-line description of each verb, shown by HELP.
var commandHelp = map[string]string{
	"TERM":      "TERM SYMBOL[=CLASS] ... declares terminals. CLASS defaults to the symbol.",
	"RULE":      "RULE HEAD -> ALT | ALT adds productions. The RULE is optional; write ε for the empty string.",
	"START":     "START SYMBOL sets the start symbol. It defaults to the head of the first rule.",
	"LOAD":      "LOAD FILE replaces the grammar with the one in a CFG file or manifest.",
	"NORMALIZE": "NORMALIZE converts a copy of the grammar to Chomsky Normal Form.",
	"SHOW":      "SHOW [ORIGINAL|NORMALIZED] lists every production.",
	"TABLE":     "TABLE [ORIGINAL|NORMALIZED] shows the rules and terminals as tables.",
	"SAVE":      "SAVE [ORIGINAL|NORMALIZED] FILE writes the grammar as a CFG file.",
	"RESET":     "RESET discards the grammar and starts over.",
	"HELP":      "HELP [COMMAND] shows this list, or the help for one command.",
	"QUIT":      "QUIT ends the session.",
}

// NewSession creates a Session with an empty grammar.
func NewSession() *Session {
	s := &Session{Width: report.DefaultWidth}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.g = grammar.New[string](nil)
	s.normalized = nil
}

// Grammar returns the grammar being built.
func (s *Session) Grammar() *grammar.Grammar[string] {
	return s.g
}

// Normalized returns the result of the last NORMALIZE, or nil if the grammar
// has changed since or NORMALIZE has not been run.
func (s *Session) Normalized() *grammar.Grammar[string] {
	return s.normalized
}

// Load replaces the grammar with the one built from def.
func (s *Session) Load(def cfgfile.Definition) error {
	g, err := def.Build(nil)
	if err != nil {
		return err
	}
	s.g = g
	s.normalized = nil
	if def.Name != "" {
		s.Name = def.Name
	}
	return nil
}

// Execute carries out cmd and returns the text to show for it. QUIT is not
// handled here; it is up to whatever is reading commands.
func (s *Session) Execute(cmd Command) (string, error) {
	switch cmd.Verb {
	case "TERM":
		return s.executeTerm(cmd.Args)
	case "RULE":
		return s.executeRule(cmd.Args[0])
	case "START":
		return s.executeStart(cmd.Args[0])
	case "LOAD":
		return s.executeLoad(cmd.Args[0])
	case "NORMALIZE":
		return s.executeNormalize()
	case "SHOW":
		g, err := s.selectGrammar(cmd.Args)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(report.Dump(g, s.Width), "\n"), nil
	case "TABLE":
		g, err := s.selectGrammar(cmd.Args)
		if err != nil {
			return "", err
		}
		out := report.RuleTable(g, s.Width)
		if len(g.Terminals()) > 0 {
			out += "\n\n" + report.TerminalTable(g, s.Width)
		}
		return out, nil
	case "SAVE":
		return s.executeSave(cmd.Args)
	case "RESET":
		s.reset()
		return "Grammar cleared", nil
	case "HELP":
		return s.executeHelp(cmd.Args)
	default:
		return "", cnferrors.Usagef("I can't %s", cmd.Verb)
	}
}

func (s *Session) executeTerm(args []string) (string, error) {
	p := s.g.Pool()

	var added []string
	for _, a := range args {
		name, class, hasClass := strings.Cut(a, "=")
		if !hasClass {
			class = name
		}
		if err := cfgfile.CheckSymbolName(name); err != nil {
			return "", cnferrors.WrapUsagef(err, "%q can't be a terminal", name)
		}

		if err := s.g.AddTerminal(p.Symbol(name), class); err != nil {
			return "", s.describe(err, name)
		}
		added = append(added, name)
	}

	s.normalized = nil
	return fmt.Sprintf("Added %s", countOf(len(added), "terminal")), nil
}

func (s *Session) executeRule(ruleText string) (string, error) {
	r, err := cfgfile.ParseRule(ruleText)
	if err != nil {
		return "", cnferrors.WrapUsagef(err, "That rule doesn't make sense: %s", trimInvalid(err))
	}

	// check everything first so a bad alternative adds nothing
	work := s.g.Copy()
	p := work.Pool()
	head := p.Symbol(r.Head)
	for _, alt := range r.Alternatives {
		if err := work.AddRule(head, p.Symbols(alt...)...); err != nil {
			return "", s.describe(err, r.Head)
		}
	}
	if _, hasStart := work.Start(); !hasStart {
		if err := work.SetStart(head); err != nil {
			return "", s.describe(err, r.Head)
		}
	}

	s.g = work
	s.normalized = nil
	return fmt.Sprintf("Added %s for %s", countOf(len(r.Alternatives), "production"), r.Head), nil
}

func (s *Session) executeStart(name string) (string, error) {
	sym := s.g.Pool().Symbol(name)
	if sym.IsReserved() {
		return "", cnferrors.Usagef("%s can't be the start symbol", name)
	}
	if err := s.g.SetStart(sym); err != nil {
		return "", s.describe(err, name)
	}

	s.normalized = nil
	return fmt.Sprintf("Start symbol is now %s", name), nil
}

func (s *Session) executeLoad(path string) (string, error) {
	def, err := cfgfile.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", cnferrors.WrapUsagef(err, "There's no file at %s", path)
		}
		return "", cnferrors.WrapUsagef(err, "Couldn't load %s: %v", path, err)
	}

	if err := s.Load(def); err != nil {
		return "", s.describe(err, path)
	}

	return fmt.Sprintf("Loaded %s with %s and %s", path,
		countOf(len(s.g.Nonterminals()), "nonterminal"),
		countOf(s.g.RuleCount(), "production")), nil
}

func (s *Session) executeNormalize() (string, error) {
	work := s.g.Copy()
	work.SetIterationLimit(s.IterationLimit)
	work.SetLogger(s.Logger)

	if err := work.ToChomskyNormalForm(); err != nil {
		return "", s.describe(err, "")
	}

	s.normalized = work
	return report.Summary(s.g, work, s.Width), nil
}

func (s *Session) executeSave(args []string) (string, error) {
	g := s.g
	path := args[len(args)-1]
	if len(args) > 1 {
		var err error
		if g, err = s.selectGrammar(args[:1]); err != nil {
			return "", err
		}
	}

	def := cfgfile.FromGrammar(s.Name, g)
	data, err := def.MarshalTOML()
	if err != nil {
		return "", fmt.Errorf("encode grammar: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", cnferrors.WrapUsagef(err, "Couldn't write to %s", path)
	}

	return fmt.Sprintf("Saved to %s", path), nil
}

func (s *Session) executeHelp(args []string) (string, error) {
	if len(args) == 1 {
		msg, ok := commandHelp[args[0]]
		if !ok {
			return "", cnferrors.Usagef("There's no command called %s", args[0])
		}
		return rosed.Edit(msg).Wrap(s.Width).String(), nil
	}

	verbs := util.OrderedKeys(commandHelp)

	defs := make([][2]string, len(verbs))
	for i := range verbs {
		defs[i] = [2]string{verbs[i], commandHelp[verbs[i]]}
	}

	opts := rosed.Options{ParagraphSeparator: "\n", NoTrailingLineSeparators: true}
	return rosed.Edit("").
		InsertDefinitionsTableOpts(0, defs, s.Width, opts).
		String(), nil
}

// selectGrammar gives the grammar picked by an optional ORIGINAL or
// NORMALIZED argument.
func (s *Session) selectGrammar(args []string) (*grammar.Grammar[string], error) {
	if len(args) == 0 || !grammarSelectors[args[0]] {
		return s.g, nil
	}
	if s.normalized == nil {
		return nil, cnferrors.Usagef("There's no normalized grammar; run NORMALIZE first")
	}
	return s.normalized, nil
}

// describe wraps an error from the grammar with a message for the shell.
func (s *Session) describe(err error, name string) error {
	switch {
	case errors.Is(err, grammar.ErrDuplicateTerminal):
		return cnferrors.WrapUsagef(err, "%s is already a terminal", name)
	case errors.Is(err, grammar.ErrSymbolClass):
		if s.g.IsTerminal(s.g.Pool().Symbol(name)) {
			return cnferrors.WrapUsagef(err, "%s is a terminal, so it can't be used that way", name)
		}
		return cnferrors.WrapUsagef(err, "%s is a nonterminal, so it can't be used that way", name)
	case errors.Is(err, grammar.ErrUnknownSymbol):
		return cnferrors.WrapUsagef(err, "%s isn't in the grammar yet; add a rule for it first", name)
	case errors.Is(err, grammar.ErrReservedSymbol):
		return cnferrors.WrapUsagef(err, "%s uses a reserved symbol", name)
	case errors.Is(err, grammar.ErrNoStartSymbol):
		return cnferrors.WrapUsagef(err, "There's no start symbol; add a rule or use START")
	case errors.Is(err, grammar.ErrIterationLimit):
		return cnferrors.WrapUsagef(err, "Normalization gave up after %d passes", s.IterationLimit)
	case errors.Is(err, grammar.ErrMixedEmpty):
		return cnferrors.WrapUsagef(err, "%s can only appear by itself in a production", grammar.Empty.Name())
	}
	return err
}

// trimInvalid gives the message of a cfgfile error without the leading
// "invalid grammar definition: ".
func trimInvalid(err error) string {
	return strings.TrimPrefix(err.Error(), cfgfile.ErrInvalidDefinition.Error()+": ")
}

func countOf(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
