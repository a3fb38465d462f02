// Package records loads named records from YAML so commands can select them with
// CustomField selectors. Document order is preserved.
package records

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"

	"claycmd/pkg/cmdparse"
	"claycmd/pkg/validate"
)

// Record is one named entry with ordered attributes.
type Record struct {
	key   string
	names []string
	attrs map[string]any
}

// NewRecord creates an empty record.
func NewRecord(key string) *Record {
	return &Record{key: key, attrs: make(map[string]any)}
}

// Set adds or replaces an attribute.
func (r *Record) Set(name string, value any) {
	if _, ok := r.attrs[name]; !ok {
		r.names = append(r.names, name)
	}
	r.attrs[name] = value
}

func (r *Record) Key() string {
	return r.key
}

// Attr implements cmdparse.Attributer. The key is exposed as the "key" attribute unless
// the record defines one itself.
func (r *Record) Attr(name string) (any, bool) {
	if v, ok := r.attrs[name]; ok {
		return v, true
	}
	if name == "key" {
		return r.key, true
	}
	return nil, false
}

// Names returns the attribute names in document order.
func (r *Record) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Record) String() string {
	parts := make([]string, len(r.names))
	for i, n := range r.names {
		parts[i] = fmt.Sprintf("%s=%v", n, r.attrs[n])
	}
	return fmt.Sprintf("%s(%s)", r.key, strings.Join(parts, ", "))
}

// Load reads records from a YAML file.
func Load(path string) (*cmdparse.OrderedScope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scope, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load records from %s: %w", path, err)
	}
	return scope, nil
}

// Decode reads a YAML mapping of record keys to attribute mappings:
//
//	c_a: {gender: f, score: 65}
//	c_b: {gender: f, score: 75}
func Decode(r io.Reader) (*cmdparse.OrderedScope, error) {
	scope := cmdparse.NewOrderedScope()

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return scope, nil
		}
		return nil, err
	}
	if len(doc.Content) == 0 {
		return scope, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: records must be a mapping", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if err := validate.Length(keyNode.Value, 1, -1); err != nil {
			return nil, fmt.Errorf("line %d: %w", keyNode.Line, err)
		}
		if _, exists := scope.Lookup(keyNode.Value); exists {
			return nil, fmt.Errorf("line %d: duplicate record %q", keyNode.Line, keyNode.Value)
		}

		rec, err := decodeRecord(keyNode.Value, valueNode)
		if err != nil {
			return nil, err
		}
		scope.Set(rec.key, rec)
	}
	return scope, nil
}

func decodeRecord(key string, node *yaml.Node) (*Record, error) {
	rec := NewRecord(key)
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return rec, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: record %q must be a mapping", node.Line, key)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: record %q: %w", node.Content[i+1].Line, key, err)
		}
		rec.Set(node.Content[i].Value, v)
	}
	return rec, nil
}

// Table prints the records of scope with one column per attribute name.
func Table(w io.Writer, scope cmdparse.Scope) {
	values := scope.Values()

	var columns []string
	seen := make(map[string]bool)
	for _, v := range values {
		rec, ok := v.(*Record)
		if !ok {
			continue
		}
		for _, n := range rec.names {
			if !seen[n] {
				seen[n] = true
				columns = append(columns, n)
			}
		}
	}

	headers := []interface{}{"key"}
	for _, c := range columns {
		headers = append(headers, c)
	}
	tbl := table.New(headers...).WithWriter(w)
	for _, v := range values {
		rec, ok := v.(*Record)
		if !ok {
			continue
		}
		row := []interface{}{rec.key}
		for _, c := range columns {
			if attr, ok := rec.attrs[c]; ok {
				row = append(row, attr)
			} else {
				row = append(row, "")
			}
		}
		tbl.AddRow(row...)
	}
	tbl.Print()
}
