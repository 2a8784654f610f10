// Package cnferrors has errors that carry a message meant for the person at
// the shell alongside the usual technical one.
package cnferrors

import (
	"errors"
	"fmt"
)

// usageError is an error caused by input that could not be understood, or
// that asks for something that cannot be done to the grammar right now.
//
// It includes a human-readable message to show to the operator as well as a
// more technical "error message" style message.
type usageError struct {
	msg   string
	human string
	wrap  error
}

func (e *usageError) Error() string {
	return e.msg
}

// ShellMessage is the message that should be shown at the prompt to describe
// the error.
func (e *usageError) ShellMessage() string {
	return e.human
}

func (e *usageError) Unwrap() error {
	return e.wrap
}

// Usage returns a new error that has both the message to show the operator
// and the technical description of the error. If technical is empty, one is
// generated from human.
func Usage(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("usage error: %s", human)
	}
	return &usageError{
		msg:   technical,
		human: human,
	}
}

// Usagef returns a new error whose operator message is built from a format
// string and its arguments.
func Usagef(humanFormat string, a ...interface{}) error {
	return Usage(fmt.Sprintf(humanFormat, a...), "")
}

// WrapUsage returns a new error like Usage that wraps e. If technical is empty,
// the technical message is made from human and e.
func WrapUsage(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("usage error: %s: %v", human, e)
	}
	return &usageError{
		msg:   technical,
		human: human,
		wrap:  e,
	}
}

// WrapUsagef is WrapUsage with the operator message built from a format
// string.
func WrapUsagef(e error, humanFormat string, a ...interface{}) error {
	return WrapUsage(e, fmt.Sprintf(humanFormat, a...), "")
}

// ShellMessage gets the message to show at the prompt for err. If err is or
// wraps an error made by this package, its operator message is returned.
// Otherwise, err.Error() is.
func ShellMessage(err error) string {
	var uErr *usageError
	if errors.As(err, &uErr) {
		return uErr.ShellMessage()
	}
	return err.Error()
}
