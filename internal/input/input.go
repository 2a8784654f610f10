// Package input reads lines typed at the grammar shell, either from a plain
// stream or from a terminal through readline.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is shown before each line read by an InteractiveReader.
const DefaultPrompt = "cfg> "

// DirectReader reads lines from any generic input stream directly. It does
// not sanitize the input of control and escape sequences.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader reads lines from stdin using a go implementation of the
// GNU Readline library. This keeps input clear of all typing and editing
// escape sequences and enables the use of command history. It should in
// general only be used when directly connected to a TTY.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a DirectReader with a buffered reader on r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates an InteractiveReader and initializes readline.
// If historyFile is not empty, lines entered are saved to it and loaded from
// it on the next session. The returned InteractiveReader must have Close
// called on it before disposal to properly teardown readline resources.
func NewInteractiveReader(historyFile string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          DefaultPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: DefaultPrompt,
	}, nil
}

// Close does nothing; DirectReader holds no resources, but callers should
// treat it as though it must be closed.
func (dr *DirectReader) Close() error {
	return nil
}

// Close cleans up readline resources.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadCommand reads the next line. Unless blank lines are allowed, it blocks
// until a line containing non-space characters is read. The returned line has
// leading and trailing whitespace removed.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. A final line without a trailing newline is returned with a nil
// error, and the call after it gets io.EOF.
func (dr *DirectReader) ReadCommand() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && dr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadCommand reads the next line from the terminal. It otherwise behaves the
// same as DirectReader.ReadCommand. An interrupt (Ctrl-C) on an empty line is
// reported as io.EOF.
func (ir *InteractiveReader) ReadCommand() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ir.rl.Readline()
		if err == readline.ErrInterrupt {
			if line == "" {
				return "", io.EOF
			}
			line = ""
			continue
		}
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && ir.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// AllowBlank sets whether blank lines are returned. By default they are not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank lines are returned. By default they are not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// GetPrompt gets the current prompt.
func (ir *InteractiveReader) GetPrompt() string {
	return ir.prompt
}
