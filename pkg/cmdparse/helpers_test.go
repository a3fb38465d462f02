package cmdparse

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

type student struct {
	Name   string
	Gender string
	Score  int
}

type studentFixture struct {
	a, b, c, d, e, f *student
	scope            *OrderedScope
}

func newStudents() studentFixture {
	fx := studentFixture{
		a: &student{"c_a", "f", 65},
		b: &student{"c_b", "f", 75},
		c: &student{"c_c", "m", 80},
		d: &student{"c_d", "m", 60},
		e: &student{"c_e", "f", 90},
		f: &student{"c_f", "m", 90},
	}
	fx.scope = NewOrderedScope()
	for _, s := range []*student{fx.a, fx.b, fx.c, fx.d, fx.e, fx.f} {
		fx.scope.Set(s.Name, s)
	}
	return fx
}

func newTestParser(t *testing.T, opts ...Option) *CommandParser {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(opts...)
}

func echoArgs(args []any, _ map[string]any) (any, error) {
	return args, nil
}

func mustRegister(t *testing.T, p *CommandParser, cmds ...*Command) {
	t.Helper()
	_, err := p.RegisterCommand(0, cmds...)
	require.NoError(t, err)
}
