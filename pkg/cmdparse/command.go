package cmdparse

import (
	"fmt"
	"strings"

	"claycmd/pkg/validate"
)

// Handler is invoked once per argument combination. args holds one value per supplied
// argument in declared order; kwargs are passed through from ParseCommand unchanged.
type Handler func(args []any, kwargs map[string]any) (any, error)

// Command is an immutable descriptor binding a name, typed parameters, a permission
// level and a handler.
type Command struct {
	name        string
	description string
	params      []*Field
	permission  int
	handler     Handler

	minArgs   int
	maxArgs   int
	usageText string
}

// NewCommand validates and builds a Command. Required parameters may not follow
// optional ones.
func NewCommand(name, description string, params []*Field, permission int, handler Handler) (*Command, error) {
	if err := validate.Identifier(name); err != nil {
		return nil, fmt.Errorf("%w: name: %w", ErrInvalidCommand, err)
	}
	if err := validate.NotNil(handler); err != nil {
		return nil, fmt.Errorf("%w: cannot create command %q: handler is nil: %w", ErrInvalidCommand, name, err)
	}

	c := &Command{
		name:        name,
		description: description,
		params:      append([]*Field(nil), params...),
		permission:  permission,
		handler:     handler,
	}
	for _, p := range c.params {
		if p == nil {
			return nil, fmt.Errorf("%w: cannot create command %q: nil parameter", ErrInvalidCommand, name)
		}
		if p.optional {
			c.maxArgs++
			continue
		}
		if c.maxArgs > c.minArgs {
			return nil, fmt.Errorf("%w: cannot create command %q: positional parameter %s follows optional parameter",
				ErrInvalidCommand, name, p)
		}
		c.minArgs++
		c.maxArgs++
	}
	c.usageText = c.usage(RenderPlain)
	return c, nil
}

// MustCommand panics if err is not nil.
func MustCommand(c *Command, err error) *Command {
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) Description() string {
	return c.description
}

func (c *Command) Permission() int {
	return c.permission
}

// Params returns a copy of the parameter list.
func (c *Command) Params() []*Field {
	return append([]*Field(nil), c.params...)
}

// MinArgs is the number of required parameters.
func (c *Command) MinArgs() int {
	return c.minArgs
}

// MaxArgs is the total number of parameters.
func (c *Command) MaxArgs() int {
	return c.maxArgs
}

// Usage is the command name followed by each parameter's rendered form.
func (c *Command) Usage() string {
	return c.usageText
}

func (c *Command) usage(mode RenderMode) string {
	var sb strings.Builder
	sb.WriteString(c.name)
	for _, p := range c.params {
		sb.WriteByte(' ')
		sb.WriteString(p.Render(mode))
	}
	return sb.String()
}

func (c *Command) String() string {
	return c.Render(RenderPlain)
}

// Render returns the help page of the command: the description, then the usage line.
func (c *Command) Render(mode RenderMode) string {
	if mode == RenderMarkdown {
		return c.description + "  \n" + c.usage(mode)
	}
	return c.description + "\n\n" + c.usageText
}
