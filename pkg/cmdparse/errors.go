package cmdparse

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand is returned when the command line contains no tokens.
	ErrEmptyCommand = errors.New("empty command")
	// ErrUnknownCommand is returned when no command is registered under the requested name.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrArity is returned when the number of arguments does not fit the command.
	ErrArity = errors.New("wrong number of arguments")
	// ErrTooManyExecutions is returned when combinatorial expansion exceeds the ceiling.
	ErrTooManyExecutions = errors.New("too many possible simultaneous executions")
	// ErrDuplicateCommand is returned when a command name is registered twice.
	ErrDuplicateCommand = errors.New("command already registered")
	// ErrInvalidCommand is returned when a command descriptor cannot be built.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrInvalidField is returned when a field descriptor cannot be built.
	ErrInvalidField = errors.New("invalid field")
	// ErrOutOfScope is returned when a custom field token is not a key of its scope.
	ErrOutOfScope = errors.New("outside of the scope")
	// ErrInvalidSelector is returned for selectors that are not a JSON object or array.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrNestedSelectors is returned when selector arrays nest deeper than MaxSelectorNesting.
	ErrNestedSelectors = errors.New("too many nested selectors")
	// ErrInvalidCondition is returned for malformed selector conditions.
	ErrInvalidCondition = errors.New("invalid condition")
)

// CommandError is the uniform error returned by CommandParser.ParseCommand. Input is the
// original command text; Err carries the underlying cause.
type CommandError struct {
	Input string
	Err   error
}

func (e *CommandError) Error() string {
	if errors.Is(e.Err, ErrUnknownCommand) || errors.Is(e.Err, ErrEmptyCommand) {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed to parse %q: %v", e.Input, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// FieldError reports a token that a field could not interpret.
type FieldError struct {
	Field string
	Token string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// kindError attaches a sentinel to a human readable message without changing the message.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func newKindError(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
