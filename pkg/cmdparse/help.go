package cmdparse

import (
	"fmt"
	"strings"
)

func (p *CommandParser) helpHandler(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return p.Summary(), nil
	}
	return p.Help(fmt.Sprint(args[0]))
}

// Summary lists every registered command with its description.
func (p *CommandParser) Summary() string {
	cmds := p.Commands()
	lines := make([]string, len(cmds))
	if p.mode == RenderMarkdown {
		for i, c := range cmds {
			lines[i] = fmt.Sprintf("**%s** - %s", c.name, c.description)
		}
		return "use \"help *command_name*\" to show the help page of a command\n\n" + strings.Join(lines, "  \n")
	}
	for i, c := range cmds {
		lines[i] = fmt.Sprintf("%s - %s", c.name, c.description)
	}
	return "use \"help command_name\" to show the help page of a command\n" + strings.Join(lines, "\n")
}

// Help returns the help page of one command.
func (p *CommandParser) Help(name string) (string, error) {
	c, ok := p.Lookup(name)
	if !ok {
		return "", newKindError(ErrUnknownCommand, "unknown command %q", name)
	}
	return c.Render(p.mode), nil
}
