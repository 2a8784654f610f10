/*
Cnfi starts an interactive shell for building context-free grammars and
converting them to Chomsky Normal Form.

Rules are typed in directly, such as "S -> a S b | ε", and terminals are
declared with the TERM command. Once a grammar is built, NORMALIZE converts it
and SHOW prints the result. The shell reads user input from stdin until the
"QUIT" command is input or input ends.

Usage:

	cnfi [flags]

The flags are:

	-version
		Give the current version of Chomsky and then exit.

	-f/-file FILE
		Load the grammar in the given CFG file before the first prompt.

	-d/-direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading command input even if launched in a tty with
		stdin and stdout.

	-history FILE
		Keep readline history in the given file. Defaults to .cnfi_history in
		the user's home directory.

	-n/-iteration-limit N
		Give up on a conversion stage after N passes. Defaults to no limit.

	-v/-verbose
		Log a line to stderr after each stage of every conversion.

Once a session has started, the user input will be parsed for shell commands.
For an explanation of the commands, type "HELP" once in a session. To exit the
shell, type "QUIT".
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dekarrin/chomsky/internal/shell"
	"github.com/dekarrin/chomsky/internal/version"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitShellError indicates an unsuccessful program execution due to a
	// problem while the shell was running.
	ExitShellError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// starting the shell, such as a preload file that could not be read.
	ExitInitError
)

var (
	returnCode  int   = ExitSuccess
	flagVersion *bool = flag.Bool("version", false, "Gives the version info")
	historyFile *string
	preloadFile string
	forceDirect bool
	iterLimit   int
	verbose     bool
)

func init() {
	const (
		fileUsage        = "the CFG grammar or manifest file to load before the first prompt"
		forceDirectUsage = "force reading directly from stdin instead of going through GNU readline where possible"
		iterLimitUsage   = "give up on a conversion stage after this many passes; 0 is no limit"
		verboseUsage     = "log each conversion stage to stderr"
	)

	defaultHistory := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultHistory = filepath.Join(home, ".cnfi_history")
	}
	historyFile = flag.String("history", defaultHistory, "the file to keep readline history in")

	flag.StringVar(&preloadFile, "file", "", fileUsage)
	flag.StringVar(&preloadFile, "f", "", fileUsage+" (shorthand)")
	flag.BoolVar(&forceDirect, "direct", false, forceDirectUsage)
	flag.BoolVar(&forceDirect, "d", false, forceDirectUsage+" (shorthand)")
	flag.IntVar(&iterLimit, "iteration-limit", 0, iterLimitUsage)
	flag.IntVar(&iterLimit, "n", 0, iterLimitUsage+" (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, verboseUsage)
	flag.BoolVar(&verbose, "v", false, verboseUsage+" (shorthand)")
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic("unrecoverable panic occured")
		} else {
			os.Exit(returnCode)
		}
	}()

	flag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	opts := shell.Options{
		ForceDirect:    forceDirect,
		Preload:        preloadFile,
		HistoryFile:    *historyFile,
		IterationLimit: iterLimit,
	}
	if verbose {
		opts.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	sh, initErr := shell.New(os.Stdin, os.Stdout, opts)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer sh.Close()

	err := sh.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitShellError
		return
	}
}
