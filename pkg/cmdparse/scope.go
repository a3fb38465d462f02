package cmdparse

import (
	"reflect"
	"sort"
	"strings"
)

// Scope is a named collection of values a CustomField resolves tokens against.
// Values must return the entries in a stable order; selector results follow it.
type Scope interface {
	Lookup(key string) (any, bool)
	Values() []any
}

// ScopeFunc produces a Scope lazily. It is called once per parsed token.
type ScopeFunc func() (Scope, error)

// Attributer is implemented by scope values that expose named attributes to selectors.
type Attributer interface {
	Attr(name string) (any, bool)
}

// OrderedScope is a Scope that remembers insertion order.
type OrderedScope struct {
	keys   []string
	values map[string]any
}

// NewOrderedScope creates an empty OrderedScope.
func NewOrderedScope() *OrderedScope {
	return &OrderedScope{values: make(map[string]any)}
}

// MapScope builds an OrderedScope from m with keys in sorted order.
func MapScope[T any](m map[string]T) *OrderedScope {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := NewOrderedScope()
	for _, k := range keys {
		s.Set(k, m[k])
	}
	return s
}

// Set adds or replaces the value stored under key. Replacing keeps the original position.
func (s *OrderedScope) Set(key string, value any) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Lookup returns the value stored under key.
func (s *OrderedScope) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Values returns all values in insertion order.
func (s *OrderedScope) Values() []any {
	out := make([]any, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.values[k]
	}
	return out
}

// Keys returns all keys in insertion order.
func (s *OrderedScope) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of entries.
func (s *OrderedScope) Len() int {
	return len(s.keys)
}

// attribute reads the attribute name of v. Attributer takes precedence, then string-keyed
// maps, then exported struct fields matched by name (case-insensitively) or json tag.
func attribute(v any, name string) (any, bool) {
	if a, ok := v.(Attributer); ok {
		return a.Attr(name)
	}
	if m, ok := v.(map[string]any); ok {
		attr, found := m[name]
		return attr, found
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if sf.Name == name || tag == name || strings.EqualFold(sf.Name, name) {
				return rv.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}
