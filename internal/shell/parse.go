package shell

import (
	"strings"

	"github.com/dekarrin/chomsky/internal/cnferrors"
)

// ruleArrow is what marks a line as a rule definition.
const ruleArrow = "->"

var (
	// VerbAliases maps shorthand verbs (which must be the first words in a
	// command) to their canonical forms. They are all uppercase.
	VerbAliases = map[string]string{
		"TERMINAL":  "TERM",
		"TERMINALS": "TERM",
		"T":         "TERM",
		"R":         "RULE",
		"ADD":       "RULE",
		"SET START": "START",
		"OPEN":      "LOAD",
		"READ":      "LOAD",
		"WRITE":     "SAVE",
		"CNF":       "NORMALIZE",
		"NORM":      "NORMALIZE",
		"NORMALISE": "NORMALIZE",
		"LS":        "SHOW",
		"LIST":      "SHOW",
		"PRINT":     "SHOW",
		"CLEAR":     "RESET",
		"NEW":       "RESET",
		"BYE":       "QUIT",
		"EXIT":      "QUIT",
		"Q":         "QUIT",
		"?":         "HELP",
		"/?":        "HELP",
		"-H":        "HELP",
		"H":         "HELP",
	}

	// grammarSelectors are the words that pick which grammar SHOW, TABLE, and
	// SAVE act on, mapped to whether they pick the normalized one.
	grammarSelectors = map[string]bool{
		"ORIGINAL":   false,
		"ORIG":       false,
		"O":          false,
		"NORMALIZED": true,
		"NORMALISED": true,
		"CNF":        true,
		"N":          true,
	}
)

// ParseCommand parses a command from the given text. If it cannot, a non-nil
// error is returned.
//
// Any input containing "->" is a rule, whether or not it starts with RULE.
//
// If an empty string or a string composed only of whitespace is passed in,
// nil error is returned and a zero value for Command will be returned.
func ParseCommand(toParse string) (Command, error) {
	var cmd Command

	casedTokens := strings.Fields(toParse)
	if len(casedTokens) < 1 {
		return cmd, nil
	}

	upperTokens := make([]string, len(casedTokens))
	for i := range casedTokens {
		upperTokens[i] = strings.ToUpper(casedTokens[i])
	}

	tokens := ExpandAliases(upperTokens, 2)
	// number of input tokens consumed by the verb; expansion can change it.
	verbLen := len(casedTokens) - (len(tokens) - 1)
	args := casedTokens[verbLen:]

	if strings.Contains(toParse, ruleArrow) {
		// a head that happens to be a verb alias, as in "R -> a", is still
		// the head.
		if tokens[0] != "RULE" || len(args) < 1 || strings.HasPrefix(args[0], ruleArrow) {
			args = casedTokens
		}
		cmd.Verb = "RULE"
		cmd.Args = []string{strings.Join(args, " ")}
		return cmd, nil
	}

	cmd.Verb = tokens[0]

	switch cmd.Verb {
	case "TERM":
		if len(args) < 1 {
			return cmd, cnferrors.Usagef("%s needs at least one symbol to make a terminal", casedTokens[0])
		}
		for _, a := range args {
			if strings.HasPrefix(a, "=") || strings.HasSuffix(a, "=") {
				return cmd, cnferrors.Usagef("%q is not of the form SYMBOL or SYMBOL=CLASS", a)
			}
		}
	case "RULE":
		return cmd, cnferrors.Usagef("%s needs a rule of the form HEAD -> ALTERNATIVES", casedTokens[0])
	case "START":
		if len(args) != 1 {
			return cmd, cnferrors.Usagef("%s needs exactly one nonterminal", casedTokens[0])
		}
	case "LOAD":
		if len(args) < 1 {
			return cmd, cnferrors.Usagef("%s needs the path of a CFG file", casedTokens[0])
		}
		args = []string{strings.Join(args, " ")}
	case "SAVE":
		if len(args) < 1 {
			return cmd, cnferrors.Usagef("%s needs the path of a file to write", casedTokens[0])
		}
		if _, isSel := grammarSelectors[strings.ToUpper(args[0])]; isSel {
			if len(args) < 2 {
				return cmd, cnferrors.Usagef("%s %s needs the path of a file to write", casedTokens[0], args[0])
			}
			args = []string{strings.ToUpper(args[0]), strings.Join(args[1:], " ")}
		} else {
			args = []string{strings.Join(args, " ")}
		}
	case "SHOW", "TABLE":
		if len(args) > 1 {
			return cmd, cnferrors.Usagef("%s takes at most one of ORIGINAL or NORMALIZED", casedTokens[0])
		}
		if len(args) == 1 {
			if _, ok := grammarSelectors[strings.ToUpper(args[0])]; !ok {
				return cmd, cnferrors.Usagef("%q is not ORIGINAL or NORMALIZED", args[0])
			}
			args = []string{strings.ToUpper(args[0])}
		}
	case "HELP":
		if len(args) > 1 {
			return cmd, cnferrors.Usagef("%s takes at most one command to explain", casedTokens[0])
		}
		if len(args) == 1 {
			args = ExpandAliases([]string{strings.ToUpper(args[0])}, 1)
		}
	case "NORMALIZE", "RESET", "QUIT":
		if len(args) > 0 {
			errMsg := "%s does not take any arguments; type %s by itself"
			return cmd, cnferrors.Usagef(errMsg, casedTokens[0], casedTokens[0])
		}
	default:
		return cmd, cnferrors.Usagef("I don't know what you mean by %q", casedTokens[0])
	}

	if len(args) > 0 {
		cmd.Args = args
	}
	return cmd, nil
}

// ExpandAliases takes a slice of tokens of user input and runs alias expansion
// on it. It expects all strings in the given slice to be upper case; failure
// to ensure this may cause the expansion to not work properly. The returned
// slice contains the same tokens but with aliases expanded.
//
// The unexpanded tokens slice is not modified during this operation.
//
// Aliases up to aliasLimit words long are supported. Passing 0 or less means
// the given tokens will be returned unchanged. Expansion is not applied to
// the results of an expansion.
func ExpandAliases(tokens []string, aliasLimit int) []string {
	expandedTokens := append([]string{}, tokens...)
	if aliasLimit < 1 {
		return expandedTokens
	}

	if aliasLimit > len(tokens) {
		aliasLimit = len(tokens)
	}

	// longest alias wins, so "SET START" is found before any "SET".
	for curLimit := aliasLimit; curLimit >= 1; curLimit-- {
		checkStr := strings.Join(tokens[:curLimit], " ")
		expansion, ok := VerbAliases[checkStr]
		if ok {
			replacementTokens := strings.Fields(expansion)
			return append(replacementTokens, tokens[curLimit:]...)
		}
	}

	return expandedTokens
}
