// Package cmdparse implements a typed command line parser. Commands declare an ordered
// list of typed fields; each argument token is converted by its field into a set of
// candidate values and the handler runs once per combination of candidates.
package cmdparse

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"claycmd/internal/logger"
	"claycmd/pkg/validate"
)

// DefaultMaxExecutions bounds how many handler invocations one command line may expand to.
const DefaultMaxExecutions = 127

// CommandParser is a registry of commands that turns command lines into handler calls.
// Registration should finish before the parser is shared between goroutines.
type CommandParser struct {
	mu            sync.RWMutex
	commands      map[string]*Command
	order         []string
	maxExecutions int
	mode          RenderMode
	log           *log.Logger
}

// Option configures a CommandParser.
type Option func(*CommandParser)

// WithMaxExecutions sets the combinatorial expansion ceiling. Values below 1 are ignored.
func WithMaxExecutions(n int) Option {
	return func(p *CommandParser) {
		if validate.AtLeast(n, 1) == nil {
			p.maxExecutions = n
		}
	}
}

// WithRenderMode selects the help text format.
func WithRenderMode(mode RenderMode) Option {
	return func(p *CommandParser) {
		p.mode = mode
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *log.Logger) Option {
	return func(p *CommandParser) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a parser that contains only the built-in help command.
func New(opts ...Option) *CommandParser {
	p := &CommandParser{
		commands:      make(map[string]*Command),
		maxExecutions: DefaultMaxExecutions,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.NewStyledLogger("Parser")
	}

	help := MustCommand(NewCommand(
		"help",
		"show the help page",
		[]*Field{MustField(StringField("command_name", Optional()))},
		0,
		p.helpHandler,
	))
	if _, err := p.RegisterCommand(0, help); err != nil {
		panic(err)
	}
	return p
}

// RegisterCommand registers every command whose permission is at most ceiling. It returns
// the number of commands considered, including those skipped by the permission filter.
// A name that is already registered stops registration with ErrDuplicateCommand.
func (p *CommandParser) RegisterCommand(ceiling int, cmds ...*Command) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	considered := 0
	for _, c := range cmds {
		if c == nil {
			return considered, fmt.Errorf("%w: nil command", ErrInvalidCommand)
		}
		if c.permission > ceiling {
			p.log.Debug("Skipping command above permission ceiling", "command", c.name, "permission", c.permission, "ceiling", ceiling)
			considered++
			continue
		}
		if _, exists := p.commands[c.name]; exists {
			return considered, newKindError(ErrDuplicateCommand, "command %q already registered", c.name)
		}
		p.commands[c.name] = c
		p.order = append(p.order, c.name)
		considered++
	}
	return considered, nil
}

// Lookup returns the command registered under name.
func (p *CommandParser) Lookup(name string) (*Command, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.commands[name]
	return c, ok
}

// Commands returns the registered commands in registration order.
func (p *CommandParser) Commands() []*Command {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Command, len(p.order))
	for i, name := range p.order {
		out[i] = p.commands[name]
	}
	return out
}

// SetMaxExecutions changes the combinatorial expansion ceiling.
func (p *CommandParser) SetMaxExecutions(n int) error {
	if err := validate.AtLeast(n, 1); err != nil {
		return err
	}
	p.mu.Lock()
	p.maxExecutions = n
	p.mu.Unlock()
	return nil
}

// MaxExecutions returns the combinatorial expansion ceiling.
func (p *CommandParser) MaxExecutions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxExecutions
}

// RenderMode returns the help text format.
func (p *CommandParser) RenderMode() RenderMode {
	return p.mode
}

// ParseCommand tokenizes text, binds the arguments to the command's fields and returns a
// lazy sequence of handler results, one per combination of candidate values. kwargs is
// handed to every handler call. Binding failures are returned as *CommandError; handler
// failures surface later through Results.Err.
func (p *CommandParser) ParseCommand(text string, kwargs map[string]any) (*Results, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, &CommandError{Input: text, Err: err}
	}
	if len(tokens) == 0 {
		return nil, &CommandError{Input: text, Err: ErrEmptyCommand}
	}

	name, args := tokens[0], tokens[1:]
	cmd, ok := p.Lookup(name)
	if !ok {
		return nil, &CommandError{Input: text, Err: newKindError(ErrUnknownCommand, "unknown command %q", name)}
	}

	sets, err := p.bind(cmd, args)
	if err != nil {
		p.log.Debug("Failed to bind arguments", "command", name, "error", err)
		return nil, &CommandError{Input: text, Err: err}
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return newResults(cmd, sets, kwargs, p.log), nil
}

// bind parses each argument with its field. Surplus arguments are merged into the last
// parameter when the command has optional parameters to absorb them.
func (p *CommandParser) bind(cmd *Command, args []string) ([][]any, error) {
	n := len(args)
	if n == 0 && cmd.minArgs == 0 {
		return nil, nil
	}

	arity := func() error {
		return newKindError(ErrArity, "command %q expected %d positional argument(s), %d given", cmd.name, cmd.minArgs, n)
	}
	if n < cmd.minArgs {
		return nil, arity()
	}
	if n > cmd.maxArgs {
		if cmd.minArgs == cmd.maxArgs {
			return nil, arity()
		}
		cut := cmd.maxArgs - 1
		merged := append(args[:cut:cut], strings.Join(args[cut:], " "))
		p.log.Debug("Merged trailing arguments", "command", cmd.name, "given", n, "merged", len(merged))
		args = merged
	}

	ceiling := p.MaxExecutions()
	projection := 1
	sets := make([][]any, 0, len(args))
	for i, token := range args {
		values, err := cmd.params[i].Parse(token)
		if err != nil {
			return nil, err
		}
		sets = append(sets, values)
		projection *= len(values)
		if projection > ceiling {
			return nil, newKindError(ErrTooManyExecutions, "too many possible simultaneous executions: %d > %d", projection, ceiling)
		}
	}
	p.log.Debug("Bound arguments", "command", cmd.name, "args", len(sets), "projection", projection)
	return sets, nil
}
