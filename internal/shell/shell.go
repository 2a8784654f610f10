package shell

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dekarrin/chomsky/internal/cfgfile"
	"github.com/dekarrin/chomsky/internal/cnferrors"
	"github.com/dekarrin/chomsky/internal/input"
	"github.com/dekarrin/rosed"
)

// continuationPrompt is shown while reading the rest of a rule that was
// split over several lines.
const continuationPrompt = "...> "

// Options are the settings for a new Shell.
type Options struct {
	// ForceDirect disables readline even when connected to a terminal.
	ForceDirect bool

	// Preload is the path of a CFG file loaded before the first prompt. It
	// is not loaded if blank.
	Preload string

	// HistoryFile is where readline keeps its history. Only used for
	// interactive input.
	HistoryFile string

	// Width is the width of the console. Defaults to 80.
	Width int

	// IterationLimit is the limit passed to the grammar on NORMALIZE.
	IterationLimit int

	// Logger, if set, gets the per-stage lines of every NORMALIZE.
	Logger *log.Logger
}

// Shell reads commands from an input stream and runs them against a Session
// until QUIT is given or input ends.
type Shell struct {
	sess        *Session
	in          Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool
}

// New creates a new Shell ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and
// a buffered writer on the output stream.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. Readline is used only when both are the
// process's own and opts.ForceDirect is not set.
func New(inputStream io.Reader, outputStream io.Writer, opts Options) (*Shell, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	sess := NewSession()
	sess.IterationLimit = opts.IterationLimit
	sess.Logger = opts.Logger
	if opts.Width > 0 {
		sess.Width = opts.Width
	}

	if opts.Preload != "" {
		def, err := cfgfile.LoadFile(opts.Preload)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.Preload, err)
		}
		if err := sess.Load(def); err != nil {
			return nil, fmt.Errorf("build grammar from %s: %w", opts.Preload, err)
		}
	}

	sh := &Shell{
		sess:        sess,
		out:         bufio.NewWriter(outputStream),
		forceDirect: opts.ForceDirect,
	}

	useReadline := !opts.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		var err error
		sh.in, err = input.NewInteractiveReader(opts.HistoryFile)
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		sh.in = input.NewDirectReader(inputStream)
	}

	return sh, nil
}

// Session returns the session the shell runs commands against.
func (sh *Shell) Session() *Session {
	return sh.sess
}

// Close closes all resources associated with the Shell, including any
// readline-related resources created for interactive mode.
func (sh *Shell) Close() error {
	if sh.running {
		return fmt.Errorf("cannot close a running shell")
	}

	if err := sh.in.Close(); err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and running them until
// the QUIT command is received or input ends.
func (sh *Shell) RunUntilQuit() error {
	introMsg := "Chomsky Normal Form shell\n"
	if sh.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "=========================\n"
	introMsg += "Enter rules like \"S -> a S b | ε\", or HELP for the commands\n"

	if err := sh.write(introMsg); err != nil {
		return err
	}

	sh.running = true
	defer func() {
		sh.running = false
	}()

	for sh.running {
		cmd, err := sh.get()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("get user command: %w", err)
		}

		if cmd.Verb == "QUIT" {
			sh.running = false
			break
		}

		output, err := sh.sess.Execute(cmd)
		if err != nil {
			output = rosed.Edit(cnferrors.ShellMessage(err)).Wrap(sh.sess.Width).String()
		}
		if output != "" {
			if err := sh.write(output + "\n"); err != nil {
				return err
			}
		}
	}

	return sh.write("Goodbye\n")
}

// get obtains a single command from input. Lines that cannot be parsed have
// their problem written to output and are skipped.
func (sh *Shell) get() (Command, error) {
	for {
		line, err := sh.readLogicalLine()
		if err != nil {
			return Command{}, err
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			errMsg := fmt.Sprintf("%v\nTry HELP for valid commands\n", cnferrors.ShellMessage(err))
			if err := sh.write(errMsg); err != nil {
				return cmd, err
			}
		} else if cmd.Verb != "" {
			return cmd, nil
		}
	}
}

// readLogicalLine reads a line and, while it ends in "|", "->", or "\", the
// lines that continue it.
func (sh *Shell) readLogicalLine() (string, error) {
	line, err := sh.in.ReadCommand()
	if err != nil {
		return "", err
	}

	p, hasPrompt := sh.in.(prompter)
	var oldPrompt string
	if hasPrompt {
		oldPrompt = p.GetPrompt()
		defer p.SetPrompt(oldPrompt)
	}

	for continues(line) {
		line = strings.TrimSuffix(line, "\\")
		if hasPrompt {
			p.SetPrompt(continuationPrompt)
		}
		next, err := sh.in.ReadCommand()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		line += " " + next
	}

	return line, nil
}

func continues(line string) bool {
	return strings.HasSuffix(line, "|") || strings.HasSuffix(line, ruleArrow) || strings.HasSuffix(line, "\\")
}

func (sh *Shell) write(s string) error {
	if _, err := sh.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := sh.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
