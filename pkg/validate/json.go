package validate

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaResource = "clay://schema.json"

// CompileSchema compiles a JSON Schema. The schema may be given as JSON text (string or
// []byte) or as an already decoded Go value such as map[string]any.
func CompileSchema(schema any) (*jsonschema.Schema, error) {
	var raw []byte
	switch s := schema.(type) {
	case nil:
		return nil, failf("expected schema to not be nil")
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("cannot encode schema: %v", err), Err: err}
		}
		raw = b
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("expected %q to be a valid JSON schema", raw), Err: err}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, doc); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("cannot load schema: %v", err), Err: err}
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("cannot compile schema: %v", err), Err: err}
	}
	return compiled, nil
}

// DecodeJSON decodes text as JSON and, when schema is not nil, validates the decoded value
// against it.
func DecodeJSON(text string, schema *jsonschema.Schema) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("expected %q to be a valid JSON string", text), Err: err}
	}
	if schema != nil {
		if err := schema.Validate(v); err != nil {
			return nil, &ValidationError{Msg: err.Error(), Err: err}
		}
	}
	return v, nil
}
