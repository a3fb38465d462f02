package commands

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claycmd/internal/records"
	"claycmd/pkg/cmdparse"
)

const fixture = `
c_a: {gender: f, score: 65}
c_b: {gender: f, score: 75}
c_c: {gender: m, score: 80}
c_d: {gender: m, score: 60}
`

func setupParser(t *testing.T, ceiling int) (*cmdparse.CommandParser, *int) {
	t.Helper()
	scope, err := records.Decode(strings.NewReader(fixture))
	require.NoError(t, err)

	reloads := 0
	deps := Deps{
		Records: func() (cmdparse.Scope, error) { return scope, nil },
		Reload: func() (int, error) {
			reloads++
			return scope.Len(), nil
		},
	}

	p := cmdparse.New(cmdparse.WithLogger(log.New(io.Discard)))
	n, err := Register(p, ceiling, deps)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	return p, &reloads
}

func run(t *testing.T, p *cmdparse.CommandParser, line string, kwargs map[string]any) []any {
	t.Helper()
	res, err := p.ParseCommand(line, kwargs)
	require.NoError(t, err)
	values, _, err := res.Collect()
	require.NoError(t, err)
	return values
}

func TestRegister_PermissionCeiling(t *testing.T) {
	p, _ := setupParser(t, PermissionUser)
	_, ok := p.Lookup("reload")
	assert.False(t, ok)
	_, ok = p.Lookup("grade")
	assert.True(t, ok)

	admin, reloads := setupParser(t, PermissionAdmin)
	assert.Equal(t, []any{"reloaded 4 records"}, run(t, admin, "reload", nil))
	assert.Equal(t, 1, *reloads)
}

func TestBuild_RequiresRecords(t *testing.T) {
	_, err := Build(Deps{})
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	p, _ := setupParser(t, PermissionAdmin)

	tests := []struct {
		name   string
		line   string
		kwargs map[string]any
		want   []any
	}{
		{name: "add", line: "add 1 2", want: []any{3}},
		{name: "echo merges tail", line: `echo "hello world" and more`, want: []any{"hello world and more"}},
		{name: "echo single", line: "echo hi", want: []any{"hi"}},
		{name: "json", line: `json {"b": 1, "a": [true]}`, want: []any{"{\n  \"a\": [\n    true\n  ],\n  \"b\": 1\n}"}},
		{name: "json without payload", line: "json", want: []any{"null"}},
		{
			name:   "order",
			line:   `order alice {"name":"eggs","price":1.5,"quantity":2}`,
			kwargs: map[string]any{"user": "bob"},
			want:   []any{"alice ordered 2 x eggs for 3.00 (by bob)"},
		},
		{name: "match", line: "match m.*", want: []any{"mercury", "mars"}},
		{name: "match none", line: "match pluto", want: nil},
		{name: "show key", line: "show c_a", want: []any{"c_a(gender=f, score=65)"}},
		{
			name: "show selector",
			line: `show @{"gender":"m"}`,
			want: []any{"c_c(gender=m, score=80)", "c_d(gender=m, score=60)"},
		},
		{
			name: "grade expands",
			line: `grade @["c_a","c_c"] 70`,
			want: []any{"c_a: fail", "c_c: pass"},
		},
		{
			name: "grade verbose",
			line: "grade c_b 70 true",
			want: []any{"c_b: pass (75 / 70)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, p, tt.line, tt.kwargs))
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	p, _ := setupParser(t, PermissionAdmin)

	tests := []struct {
		name string
		line string
		kind error
	}{
		{name: "order violates schema", line: `order alice {"name":"eggs","price":-1}`},
		{name: "order missing field", line: `order alice {"name":"eggs"}`},
		{name: "order needs compact json", line: `order alice {"name": "eggs", "price": 1}`, kind: cmdparse.ErrArity},
		{name: "grade bad bool", line: "grade c_a 70 yes"},
		{name: "show unknown", line: "show c_z", kind: cmdparse.ErrOutOfScope},
		{name: "add arity", line: "add 1 2 3", kind: cmdparse.ErrArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseCommand(tt.line, nil)
			require.Error(t, err)
			var cerr *cmdparse.CommandError
			assert.True(t, errors.As(err, &cerr))
			if tt.kind != nil {
				assert.True(t, errors.Is(err, tt.kind))
			}
		})
	}
}

func TestGradeThresholdRange(t *testing.T) {
	p, _ := setupParser(t, PermissionUser)

	res, err := p.ParseCommand("grade c_a 120", nil)
	require.NoError(t, err)
	values, n, err := res.Collect()
	assert.Empty(t, values)
	assert.Equal(t, 0, n)
	assert.EqualError(t, err, "invalid threshold: expected 120 to be no more than 100")
}

func TestHelpListsApplicationCommands(t *testing.T) {
	p, _ := setupParser(t, PermissionUser)
	summary := run(t, p, "help", nil)[0].(string)
	for _, name := range []string{"help", "add", "echo", "json", "order", "match", "show", "grade"} {
		assert.Contains(t, summary, "\n"+name+" - ")
	}
	assert.NotContains(t, summary, "reload")

	page := run(t, p, "help grade", nil)[0].(string)
	assert.Equal(t, "grade records against a passing score\n\ngrade <record> <FloatField: threshold> [BoolField: verbose]", page)
}
