package records

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claycmd/pkg/cmdparse"
)

const studentsYAML = `
c_b: {gender: f, score: 75}
c_a: {gender: f, score: 65}
c_c:
  gender: m
  score: 80
  tags: [captain]
`

func TestDecode(t *testing.T) {
	scope, err := Decode(strings.NewReader(studentsYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"c_b", "c_a", "c_c"}, scope.Keys())

	v, ok := scope.Lookup("c_c")
	require.True(t, ok)
	rec := v.(*Record)
	assert.Equal(t, "c_c", rec.Key())
	assert.Equal(t, []string{"gender", "score", "tags"}, rec.Names())

	score, ok := rec.Attr("score")
	require.True(t, ok)
	assert.Equal(t, 80, score)

	key, ok := rec.Attr("key")
	require.True(t, ok)
	assert.Equal(t, "c_c", key)

	_, ok = rec.Attr("height")
	assert.False(t, ok)

	assert.Equal(t, "c_c(gender=m, score=80, tags=[captain])", rec.String())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "not a mapping", input: "- a\n- b\n", errMsg: "records must be a mapping"},
		{name: "record not a mapping", input: "a: 5\n", errMsg: `record "a" must be a mapping`},
		{name: "duplicate", input: "a: {x: 1}\na: {x: 2}\n", errMsg: "a"},
		{name: "invalid yaml", input: "a: [\n", errMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	scope, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, scope.Len())

	scope, err = Decode(strings.NewReader("ghost:\n"))
	require.NoError(t, err)
	v, ok := scope.Lookup("ghost")
	require.True(t, ok)
	assert.Empty(t, v.(*Record).Names())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.yaml")
	require.NoError(t, os.WriteFile(path, []byte(studentsYAML), 0600))

	scope, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, scope.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRecordsWithSelectors(t *testing.T) {
	scope, err := Decode(strings.NewReader(studentsYAML))
	require.NoError(t, err)
	field := cmdparse.MustField(cmdparse.CustomField("student", scope))

	got, err := field.Parse(`@{"gender":"f","score":[">70"]}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c_b", got[0].(*Record).Key())
}

func TestTable(t *testing.T) {
	scope, err := Decode(strings.NewReader(studentsYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	Table(&buf, scope)
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "key")
	assert.Contains(t, lines[0], "gender")
	assert.Contains(t, lines[0], "tags")
	assert.Contains(t, lines[1], "c_b")
	assert.Contains(t, lines[3], "captain")
}
