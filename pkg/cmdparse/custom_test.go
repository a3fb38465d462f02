package cmdparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomField_Lookup(t *testing.T) {
	fx := newStudents()
	f := MustField(CustomField("student", fx.scope))

	got, err := f.Parse("c_a")
	require.NoError(t, err)
	assert.Equal(t, []any{fx.a}, got)

	_, err = f.Parse("c_z")
	require.Error(t, err)
	assert.EqualError(t, err, `"c_z" outside of the scope "student"`)
	assert.True(t, errors.Is(err, ErrOutOfScope))
}

func TestCustomField_Selectors(t *testing.T) {
	fx := newStudents()
	f := MustField(CustomField("student", fx.scope))

	tests := []struct {
		name  string
		token string
		want  []any
	}{
		{
			name:  "and filter with conditions",
			token: `@{"score":["!=80","<90"],"gender":"f"}`,
			want:  []any{fx.a, fx.b},
		},
		{
			name:  "scalar equality",
			token: `@{"score":90}`,
			want:  []any{fx.e, fx.f},
		},
		{
			name:  "underscore keys are ignored",
			token: `@{"gender":"m","_note":"ignored"}`,
			want:  []any{fx.c, fx.d, fx.f},
		},
		{
			name:  "empty object selects everything",
			token: `@{}`,
			want:  []any{fx.a, fx.b, fx.c, fx.d, fx.e, fx.f},
		},
		{
			name:  "no matches",
			token: `@{"score":[">100"]}`,
			want:  []any{},
		},
		{
			name:  "or of keys",
			token: `@["c_a","c_c"]`,
			want:  []any{fx.a, fx.c},
		},
		{
			name:  "or deduplicates",
			token: `@["c_a","c_a",{"name":"c_a"}]`,
			want:  []any{fx.a},
		},
		{
			name:  "or mixes keys and filters",
			token: `@["c_a",{"gender":"m"}]`,
			want:  []any{fx.a, fx.c, fx.d, fx.f},
		},
		{
			name:  "or of nested selector strings",
			token: `@["@{\"score\":[\"=80\"]}","@{\"score\":[\"<65\"]}"]`,
			want:  []any{fx.c, fx.d},
		},
		{
			name:  "nesting at the limit",
			token: `@[[["c_b"]]]`,
			want:  []any{fx.b},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Parse(tt.token)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
			assert.Len(t, got, len(tt.want))
		})
	}
}

func TestCustomField_SelectorOrder(t *testing.T) {
	fx := newStudents()
	f := MustField(CustomField("student", fx.scope))

	got, err := f.Parse(`@{"gender":"f"}`)
	require.NoError(t, err)
	assert.Equal(t, []any{fx.a, fx.b, fx.e}, got)

	got, err = f.Parse(`@["c_e","c_a","c_e"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{fx.e, fx.a}, got)
}

func TestCustomField_SelectorErrors(t *testing.T) {
	fx := newStudents()
	f := MustField(CustomField("student", fx.scope))

	tests := []struct {
		name    string
		token   string
		kind    error
		message string
	}{
		{name: "malformed json", token: `@{bad`, kind: ErrInvalidSelector, message: `"{bad" is not a valid selector`},
		{name: "scalar selector", token: `@5`, kind: ErrInvalidSelector, message: `5 is not a valid selector`},
		{name: "number inside array", token: `@[1]`, kind: ErrInvalidSelector, message: `1 is not a valid selector`},
		{name: "too deep", token: `@[[[["c_a"]]]]`, kind: ErrNestedSelectors, message: "too many nested selectors"},
		{name: "unknown key inside array", token: `@["c_a","nobody"]`, kind: ErrOutOfScope, message: `"nobody" outside of the scope "student"`},
		{name: "bad condition", token: `@{"score":["==80"]}`, kind: ErrInvalidCondition, message: `invalid condition "==80"`},
		{name: "non string condition", token: `@{"score":[80]}`, kind: ErrInvalidCondition, message: "invalid condition 80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Parse(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.EqualError(t, err, tt.message)
		})
	}

	_, err := f.Parse(`@{"height":[">1"]}`)
	assert.EqualError(t, err, `"student" has no attribute "height"`)
}

func TestCustomFieldFunc_ResolvesOncePerParse(t *testing.T) {
	fx := newStudents()
	calls := 0
	f := MustField(CustomFieldFunc("student", func() (Scope, error) {
		calls++
		return fx.scope, nil
	}))

	_, err := f.Parse(`@["c_a",["c_b",{"gender":"m"}]]`)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = f.Parse("c_c")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	failing := MustField(CustomFieldFunc("student", func() (Scope, error) {
		return nil, errors.New("backend down")
	}))
	_, err = failing.Parse("c_a")
	assert.ErrorContains(t, err, "backend down")
}

func TestAttributeAccess(t *testing.T) {
	type tagged struct {
		Level int `json:"lvl"`
	}

	tests := []struct {
		name  string
		value any
		attr  string
		want  any
		found bool
	}{
		{name: "struct field by name", value: student{Score: 3}, attr: "Score", want: 3, found: true},
		{name: "struct field case insensitive", value: &student{Score: 3}, attr: "score", want: 3, found: true},
		{name: "struct field by json tag", value: tagged{Level: 7}, attr: "lvl", want: 7, found: true},
		{name: "generic map", value: map[string]any{"k": "v"}, attr: "k", want: "v", found: true},
		{name: "typed map", value: map[string]int{"k": 1}, attr: "k", want: 1, found: true},
		{name: "missing", value: student{}, attr: "height", found: false},
		{name: "scalar", value: 5, attr: "x", found: false},
		{name: "nil pointer", value: (*student)(nil), attr: "Score", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := attribute(tt.value, tt.attr)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMapScope(t *testing.T) {
	s := MapScope(map[string]int{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
	assert.Equal(t, []any{1, 2, 3}, s.Values())

	s.Set("a", 10)
	assert.Equal(t, []any{10, 2, 3}, s.Values())
	assert.Equal(t, 3, s.Len())
}

type taggedEntry struct {
	Name  string
	Extra any
}

func TestCustomField_UnionOfUnhashableValues(t *testing.T) {
	s := MapScope(map[string]taggedEntry{
		"a": {Name: "a", Extra: map[string]any{"x": 1}},
		"b": {Name: "b", Extra: []any{1, 2}},
		"c": {Name: "c", Extra: 3},
	})
	f := MustField(CustomField("entry", s))

	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{name: "repeated keys", token: `@["a","b","a"]`, want: []string{"a", "b"}},
		{name: "mixed with hashable", token: `@["c","a","c","b"]`, want: []string{"c", "a", "b"}},
		{name: "overlapping filters", token: `@[{"Name":"a"},{},"b"]`, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []any
			require.NotPanics(t, func() {
				var err error
				got, err = f.Parse(tt.token)
				require.NoError(t, err)
			})
			names := make([]string, len(got))
			for i, v := range got {
				names[i] = v.(taggedEntry).Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
