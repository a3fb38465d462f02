// Package validate provides explicit construction-time validators for claycmd values.
// Every helper returns a *ValidationError describing the offending value, so callers can
// refuse to build objects that would otherwise be invalid.
package validate

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"
)

// ValidationError reports a value that failed validation.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func failf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotNil fails when v is nil or a nil func, map, pointer, slice, chan or interface.
func NotNil(v any) error {
	if v == nil {
		return failf("expected %v to not be nil", v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Map, reflect.Pointer, reflect.Slice, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return failf("expected %s to not be nil", rv.Type())
		}
	}
	return nil
}

// AtLeast fails when v is smaller than lowest.
func AtLeast[T cmp.Ordered](v, lowest T) error {
	if v < lowest {
		return failf("expected %v to be at least %v", v, lowest)
	}
	return nil
}

// AtMost fails when v is greater than highest.
func AtMost[T cmp.Ordered](v, highest T) error {
	if v > highest {
		return failf("expected %v to be no more than %v", v, highest)
	}
	return nil
}

// Range fails when v is outside [lowest, highest].
func Range[T cmp.Ordered](v, lowest, highest T) error {
	if err := AtLeast(v, lowest); err != nil {
		return err
	}
	return AtMost(v, highest)
}

// Length checks the rune length of s. A negative bound is not enforced.
func Length(s string, minLen, maxLen int) error {
	n := len([]rune(s))
	if minLen >= 0 && n < minLen {
		return failf("expected length of %q to be at least %d", s, minLen)
	}
	if maxLen >= 0 && n > maxLen {
		return failf("expected length of %q to be no more than %d", s, maxLen)
	}
	return nil
}

// Identifier checks that s is a valid identifier: a letter or underscore followed by
// letters, digits or underscores.
func Identifier(s string) error {
	if s == "" {
		return failf("expected %q to be an identifier", s)
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return failf("expected %q to be an identifier", s)
	}
	return nil
}

// OneOf fails when v is not one of options.
func OneOf[T comparable](v T, options ...T) error {
	if slices.Contains(options, v) {
		return nil
	}
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = fmt.Sprintf("%#v", o)
	}
	return failf("expected %#v to be one of {%s}", v, strings.Join(quoted, ", "))
}
