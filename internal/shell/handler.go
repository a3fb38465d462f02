// Package shell provides the interactive shell and line execution for claycmd.
// Each input line goes through the command parser and results are printed as they arrive.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/goccy/go-json"

	"claycmd/internal/logger"
	"claycmd/pkg/cmdparse"
)

// Options configures a Shell.
type Options struct {
	// Out receives results and error messages. Defaults to stdout.
	Out io.Writer
	// Kwargs is passed to every command handler.
	Kwargs map[string]any
	// WordWrap is the markdown rendering width. Defaults to 80.
	WordWrap int
	// Prompt is the interactive prompt. Defaults to "clay> ".
	Prompt string
	// Style is a glamour standard style name such as "dark" or "notty". Empty picks a style
	// from the terminal.
	Style string
}

// Shell executes command lines against a parser.
type Shell struct {
	parser   *cmdparse.CommandParser
	out      io.Writer
	kwargs   map[string]any
	prompt   string
	markdown *glamour.TermRenderer
	errStyle lipgloss.Style
	log      *log.Logger
}

// New creates a Shell. Markdown rendering is enabled when the parser renders markdown.
func New(p *cmdparse.CommandParser, opts Options) (*Shell, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.WordWrap <= 0 {
		opts.WordWrap = 80
	}
	if opts.Prompt == "" {
		opts.Prompt = "clay> "
	}

	s := &Shell{
		parser:   p,
		out:      opts.Out,
		kwargs:   opts.Kwargs,
		prompt:   opts.Prompt,
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		log:      logger.NewStyledLogger("Shell"),
	}

	if p.RenderMode() == cmdparse.RenderMarkdown {
		style := glamour.WithAutoStyle()
		if opts.Style != "" {
			style = glamour.WithStandardStyle(opts.Style)
		}
		// help pages separate entries with hard line breaks
		renderer, err := glamour.NewTermRenderer(
			style,
			glamour.WithWordWrap(opts.WordWrap),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		s.markdown = renderer
	}
	return s, nil
}

// ProcessInput executes one line and prints every result. Blank lines and lines starting
// with '#' are ignored. It returns the parse error or the first handler error.
func (s *Shell) ProcessInput(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	res, err := s.parser.ParseCommand(line, s.kwargs)
	if err != nil {
		return err
	}
	for res.Next() {
		text, err := s.Format(res.Value())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(s.out, text); err != nil {
			return err
		}
	}
	logger.CommandLine(line, res.Count())
	return res.Err()
}

// Format turns a handler result into printable text.
func (s *Shell) Format(v any) (string, error) {
	var text string
	switch val := v.(type) {
	case string:
		text = val
	case fmt.Stringer:
		text = val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			text = fmt.Sprint(val)
		} else {
			text = string(b)
		}
	}

	if s.markdown == nil {
		return text, nil
	}
	rendered, err := s.markdown.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimRight(rendered, "\n"), nil
}

// PrintError writes err to the shell output in the error style.
func (s *Shell) PrintError(err error) {
	_, _ = fmt.Fprintln(s.out, s.errStyle.Render("error: "+err.Error()))
}

// Run starts the interactive loop until EOF, "exit" or an interrupt on an empty line.
func (s *Shell) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt,
		HistoryFile:     historyFile,
		AutoComplete:    NewCompleter(s.parser),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()
	s.out = rl.Stdout()

	s.log.Debug("Shell started", "commands", len(s.parser.Commands()))
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return nil
		}
		if err := s.ProcessInput(line); err != nil {
			s.log.Debug("Command failed", "input", line, "error", err)
			s.PrintError(err)
		}
	}
}
