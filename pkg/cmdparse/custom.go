package cmdparse

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// MaxSelectorNesting is the deepest level at which a selector may still be evaluated.
// The outermost selector is level 0; each array adds one level.
const MaxSelectorNesting = 2

// resolve maps a custom field token onto scope values. Plain tokens are keys; tokens
// beginning with '@' carry a JSON selector.
func (f *Field) resolve(scope Scope, token string, depth int) ([]any, error) {
	if !strings.HasPrefix(token, "@") {
		v, ok := scope.Lookup(token)
		if !ok {
			return nil, newKindError(ErrOutOfScope, "%q outside of the scope %q", token, f.param)
		}
		return []any{v}, nil
	}

	var selector any
	if err := json.Unmarshal([]byte(token[1:]), &selector); err != nil {
		return nil, newKindError(ErrInvalidSelector, "%q is not a valid selector", token[1:])
	}
	return f.selectValues(scope, selector, depth)
}

func (f *Field) selectValues(scope Scope, selector any, depth int) ([]any, error) {
	if depth > MaxSelectorNesting {
		return nil, newKindError(ErrNestedSelectors, "too many nested selectors")
	}

	switch sel := selector.(type) {
	case map[string]any:
		return f.filter(scope, sel)
	case []any:
		var union dedup
		for _, elem := range sel {
			var (
				values []any
				err    error
			)
			switch e := elem.(type) {
			case string:
				values, err = f.resolve(scope, e, depth+1)
			case map[string]any, []any:
				values, err = f.selectValues(scope, e, depth+1)
			default:
				err = newKindError(ErrInvalidSelector, "%v is not a valid selector", elem)
			}
			if err != nil {
				return nil, err
			}
			union.add(values...)
		}
		return union.values, nil
	default:
		return nil, newKindError(ErrInvalidSelector, "%v is not a valid selector", selector)
	}
}

// filter keeps the scope values matching every selector key. Keys starting with '_' are
// ignored; list values are condition lists, anything else must be equal.
func (f *Field) filter(scope Scope, selector map[string]any) ([]any, error) {
	keys := make([]string, 0, len(selector))
	for k := range selector {
		if strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0)
	for _, v := range scope.Values() {
		matched := true
		for _, k := range keys {
			attr, ok := attribute(v, k)
			if !ok {
				return nil, fmt.Errorf("%q has no attribute %q", f.param, k)
			}
			held, err := matchAttribute(attr, selector[k])
			if err != nil {
				return nil, err
			}
			matched = matched && held
		}
		if matched {
			out = append(out, v)
		}
	}
	return out, nil
}

func matchAttribute(attr, want any) (bool, error) {
	list, ok := want.([]any)
	if !ok {
		return equalValues(attr, want), nil
	}
	conditions := make([]string, len(list))
	for i, c := range list {
		s, ok := c.(string)
		if !ok {
			return false, newKindError(ErrInvalidCondition, "invalid condition %v", c)
		}
		conditions[i] = s
	}
	return ParseConditions(attr, conditions)
}

// dedup collects values in first seen order without duplicates. Values that are
// comparable at run time are compared with ==, others with reflect.DeepEqual.
type dedup struct {
	seen   map[any]struct{}
	values []any
}

func (d *dedup) add(values ...any) {
	if d.seen == nil {
		d.seen = make(map[any]struct{})
	}
	for _, v := range values {
		if v == nil || reflect.ValueOf(v).Comparable() {
			if _, ok := d.seen[v]; ok {
				continue
			}
			d.seen[v] = struct{}{}
			d.values = append(d.values, v)
			continue
		}
		dup := false
		for _, existing := range d.values {
			if reflect.DeepEqual(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			d.values = append(d.values, v)
		}
	}
}
