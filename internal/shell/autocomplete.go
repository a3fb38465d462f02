package shell

import (
	"sort"
	"strings"
	"unicode"

	"claycmd/pkg/cmdparse"
)

// Completer provides tab completion for command names and field suggestions.
// It implements the readline.AutoCompleter interface.
type Completer struct {
	parser *cmdparse.CommandParser
}

// NewCompleter creates a Completer over the commands registered with p.
func NewCompleter(p *cmdparse.CommandParser) *Completer {
	return &Completer{parser: p}
}

// Do implements the readline.AutoCompleter interface. It returns the suffixes that
// complete the word under the cursor and the length of that word.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, offset int) {
	if pos > len(line) {
		pos = len(line)
	}
	head := line[:pos]

	wordStart := pos
	for wordStart > 0 && !unicode.IsSpace(head[wordStart-1]) {
		wordStart--
	}
	currentWord := string(head[wordStart:])
	previous := strings.Fields(string(head[:wordStart]))

	var suggestions [][]rune
	for _, completion := range c.completions(previous) {
		if strings.HasPrefix(completion, currentWord) && completion != currentWord {
			suggestions = append(suggestions, []rune(strings.TrimPrefix(completion, currentWord)+" "))
		}
	}
	return suggestions, len([]rune(currentWord))
}

// completions returns candidates for the word following previous.
func (c *Completer) completions(previous []string) []string {
	if len(previous) == 0 {
		return c.commandNames()
	}

	cmd, ok := c.parser.Lookup(previous[0])
	if !ok {
		return nil
	}
	argIdx := len(previous) - 1
	if cmd.Name() == "help" && argIdx == 0 {
		return c.commandNames()
	}
	params := cmd.Params()
	if argIdx >= len(params) {
		return nil
	}
	return params[argIdx].Suggestions()
}

func (c *Completer) commandNames() []string {
	cmds := c.parser.Commands()
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name()
	}
	sort.Strings(names)
	return names
}
