package cmdparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"claycmd/pkg/validate"
)

// FieldKind identifies the variant of a Field.
type FieldKind int

const (
	KindInteger FieldKind = iota
	KindFloat
	KindBool
	KindString
	KindJSONString
	KindCollection
	KindCustom
)

var kindNames = [...]string{
	KindInteger:    "IntegerField",
	KindFloat:      "FloatField",
	KindBool:       "BoolField",
	KindString:     "StringField",
	KindJSONString: "JSONStringField",
	KindCollection: "CollectionField",
	KindCustom:     "CustomField",
}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Field"
	}
	return kindNames[k]
}

// Field converts one command line token into zero or more candidate values.
// Fields are immutable once built; use the kind specific constructors.
type Field struct {
	kind     FieldKind
	param    string
	optional bool

	schema     *jsonschema.Schema
	candidates []any
	scope      ScopeFunc
}

// FieldOption configures a Field at construction time.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	optional  bool
	schema    any
	hasSchema bool
}

// Optional marks the field as optional. Optional fields must come last in a command.
func Optional() FieldOption {
	return func(c *fieldConfig) {
		c.optional = true
	}
}

// WithSchema validates decoded JSONStringField values against a JSON Schema.
func WithSchema(schema any) FieldOption {
	return func(c *fieldConfig) {
		c.schema = schema
		c.hasSchema = true
	}
}

func newField(kind FieldKind, param string, opts []FieldOption) (*Field, error) {
	var cfg fieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate.Identifier(param); err != nil {
		return nil, fmt.Errorf("%w: %s param: %w", ErrInvalidField, kind, err)
	}

	f := &Field{kind: kind, param: param, optional: cfg.optional}
	if cfg.hasSchema {
		if kind != KindJSONString {
			return nil, fmt.Errorf("%w: %s %q does not accept a schema", ErrInvalidField, kind, param)
		}
		schema, err := validate.CompileSchema(cfg.schema)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %w", ErrInvalidField, kind, param, err)
		}
		f.schema = schema
	}
	return f, nil
}

// IntegerField parses a token as a base 10 int.
func IntegerField(param string, opts ...FieldOption) (*Field, error) {
	return newField(KindInteger, param, opts)
}

// FloatField parses a token as a float64.
func FloatField(param string, opts ...FieldOption) (*Field, error) {
	return newField(KindFloat, param, opts)
}

// BoolField accepts only the literal tokens "true" and "false".
func BoolField(param string, opts ...FieldOption) (*Field, error) {
	return newField(KindBool, param, opts)
}

// StringField returns the token with one layer of surrounding double quotes removed.
func StringField(param string, opts ...FieldOption) (*Field, error) {
	return newField(KindString, param, opts)
}

// JSONStringField decodes the token as JSON. It works best as the last parameter of a
// command, where auto-merge lets unquoted JSON contain spaces.
func JSONStringField(param string, opts ...FieldOption) (*Field, error) {
	return newField(KindJSONString, param, opts)
}

// CollectionField matches the token as an anchored regular expression against the string
// form of each candidate and returns every match.
func CollectionField[T any](param string, candidates []T, opts ...FieldOption) (*Field, error) {
	f, err := newField(KindCollection, param, opts)
	if err != nil {
		return nil, err
	}
	f.candidates = make([]any, len(candidates))
	for i, c := range candidates {
		f.candidates[i] = c
	}
	return f, nil
}

// CustomField resolves tokens against a fixed scope. Tokens starting with '@' are selectors.
func CustomField(param string, scope Scope, opts ...FieldOption) (*Field, error) {
	if scope == nil {
		return nil, fmt.Errorf("%w: %s %q requires a scope", ErrInvalidField, KindCustom, param)
	}
	return CustomFieldFunc(param, func() (Scope, error) { return scope, nil }, opts...)
}

// CustomFieldFunc is like CustomField but obtains the scope from fn on every parse.
func CustomFieldFunc(param string, fn ScopeFunc, opts ...FieldOption) (*Field, error) {
	f, err := newField(KindCustom, param, opts)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %s %q requires a scope", ErrInvalidField, KindCustom, param)
	}
	f.scope = fn
	return f, nil
}

// MustField panics if err is not nil. It is meant for package level command tables.
func MustField(f *Field, err error) *Field {
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) Kind() FieldKind {
	return f.kind
}

func (f *Field) Param() string {
	return f.param
}

func (f *Field) Optional() bool {
	return f.optional
}

// Parse converts token into its candidate values. Failures are *FieldError.
func (f *Field) Parse(token string) ([]any, error) {
	values, err := f.parse(token)
	if err != nil {
		var ferr *FieldError
		if errors.As(err, &ferr) {
			return nil, err
		}
		return nil, &FieldError{Field: f.String(), Token: token, Err: err}
	}
	return values, nil
}

func (f *Field) parse(token string) ([]any, error) {
	switch f.kind {
	case KindInteger:
		digits, ok := decimalToken(token)
		if !ok {
			return nil, fmt.Errorf("%q must be an integer", token)
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, fmt.Errorf("%q must be an integer", token)
		}
		return []any{n}, nil
	case KindFloat:
		digits, ok := decimalToken(token)
		if !ok {
			return nil, fmt.Errorf("%q must be a float", token)
		}
		n, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil, fmt.Errorf("%q must be a float", token)
		}
		return []any{n}, nil
	case KindBool:
		switch token {
		case "true":
			return []any{true}, nil
		case "false":
			return []any{false}, nil
		}
		return nil, fmt.Errorf("%q must be \"true\" or \"false\"", token)
	case KindString:
		return []any{unquote(token)}, nil
	case KindJSONString:
		v, err := validate.DecodeJSON(token, f.schema)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	case KindCollection:
		return f.matchCandidates(token)
	case KindCustom:
		scope, err := f.scope()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve scope %q: %w", f.param, err)
		}
		if scope == nil {
			return nil, fmt.Errorf("cannot resolve scope %q: no scope", f.param)
		}
		return f.resolve(scope, token, 0)
	default:
		return nil, fmt.Errorf("%w: unknown field kind %d", ErrInvalidField, f.kind)
	}
}

// decimalToken removes underscores grouping digits ("1_000") and rejects hexadecimal
// notation. An underscore must sit between two digits.
func decimalToken(token string) (string, bool) {
	body := strings.TrimLeft(token, "+-")
	if len(body) > 1 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		return "", false
	}
	if !strings.Contains(token, "_") {
		return token, true
	}
	for i := 0; i < len(token); i++ {
		if token[i] != '_' {
			continue
		}
		if i == 0 || i == len(token)-1 || !isDigit(token[i-1]) || !isDigit(token[i+1]) {
			return "", false
		}
	}
	return strings.ReplaceAll(token, "_", ""), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func unquote(token string) string {
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		return token[1 : len(token)-1]
	}
	return token
}

func (f *Field) String() string {
	return f.Render(RenderPlain)
}

// Render formats the field for usage text: <Kind: param> when required, [Kind: param]
// when optional. Collection and custom fields show only the parameter name.
func (f *Field) Render(mode RenderMode) string {
	body := f.param
	if f.kind != KindCollection && f.kind != KindCustom {
		name := f.kind.String()
		if mode == RenderMarkdown {
			name = "*" + name + "*"
		}
		body = name + ": " + f.param
	}
	if f.optional {
		return "[" + body + "]"
	}
	return "<" + body + ">"
}

// Suggestions returns tokens a line editor can offer for the field: true and false for
// booleans, the string form of each collection candidate and the keys of a custom scope
// that exposes them. Other kinds have none.
func (f *Field) Suggestions() []string {
	switch f.kind {
	case KindBool:
		return []string{"true", "false"}
	case KindCollection:
		out := make([]string, len(f.candidates))
		for i, c := range f.candidates {
			out[i] = fmt.Sprint(c)
		}
		return out
	case KindCustom:
		scope, err := f.scope()
		if err != nil || scope == nil {
			return nil
		}
		if k, ok := scope.(interface{ Keys() []string }); ok {
			return k.Keys()
		}
	}
	return nil
}
