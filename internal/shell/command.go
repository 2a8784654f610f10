// Package shell runs an interactive session for building a grammar one rule
// at a time and converting it to Chomsky Normal Form.
package shell

// Command is a valid command read from the shell's input.
type Command struct {
	// Verb is the canonical name of the command being invoked, such as "TERM",
	// "RULE", or "QUIT". Aliases are expanded before the Command is made, so
	// typing "EXIT" results in a Command with a Verb of "QUIT".
	Verb string

	// Args are the arguments given after the verb, with their case preserved.
	// For RULE, Args holds the single rule text.
	Args []string
}

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of input. It will block until one is
	// ready. If there is an error or input is at its end (EOF), the returned
	// string will be empty.
	//
	// When error is io.EOF, string will always be empty. If EOF was
	// encountered on a call but some input was received, the input will be
	// returned and error will be nil, and the next call to ReadCommand will
	// return "", io.EOF.
	ReadCommand() (string, error)

	// Close performs any operations required to clean the resources created by
	// the Reader. It should be called at least once when the Reader is no
	// longer needed.
	Close() error
}

// prompter is a Reader that shows a prompt that can be changed.
type prompter interface {
	SetPrompt(p string)
	GetPrompt() string
}
