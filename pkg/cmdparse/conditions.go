package cmdparse

import (
	"reflect"
	"strconv"
	"strings"
)

// ParseConditions reports whether value satisfies every condition. A condition is an
// operator followed by an operand: "!=", ">=", "<=" or one of ">", "<", "=", then either
// a double quoted string or a number, e.g. `>=60`, `!="m"`.
func ParseConditions(value any, conditions []string) (bool, error) {
	ok := true
	for _, cond := range conditions {
		held, err := evalCondition(value, cond)
		if err != nil {
			return false, err
		}
		ok = ok && held
	}
	return ok, nil
}

func evalCondition(value any, cond string) (bool, error) {
	invalid := newKindError(ErrInvalidCondition, "invalid condition %q", cond)
	if len(cond) < 2 {
		return false, invalid
	}

	op, rest := cond[:1], cond[1:]
	if cond[1] == '=' {
		op, rest = cond[:2], cond[2:]
	}

	var operand any
	if len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"' {
		operand = rest[1 : len(rest)-1]
	} else {
		f, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return false, invalid
		}
		operand = f
	}

	switch op {
	case "!=":
		return !equalValues(value, operand), nil
	case "=":
		return equalValues(value, operand), nil
	case ">", "<", ">=", "<=":
		c, ok := compareValues(value, operand)
		if !ok {
			return false, invalid
		}
		switch op {
		case ">":
			return c > 0, nil
		case "<":
			return c < 0, nil
		case ">=":
			return c >= 0, nil
		default:
			return c <= 0, nil
		}
	default:
		return false, invalid
	}
}

// equalValues compares numbers numerically regardless of their Go type.
func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
