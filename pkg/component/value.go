package component

import (
	"fmt"
	"reflect"
	"strconv"
)

// Value is the result of a config lookup. The zero value is Undefined.
type Value struct {
	raw     any
	defined bool
}

// Undefined is the value of keys that are absent from a config.
var Undefined = Value{}

// Defined wraps a declared value, including nil for explicit nulls.
func Defined(raw any) Value {
	return Value{raw: raw, defined: true}
}

// IsDefined reports whether the key was declared.
func (v Value) IsDefined() bool {
	return v.defined
}

// Raw returns the underlying value, nil when undefined.
func (v Value) Raw() any {
	return v.raw
}

// Truthy reports whether the value is declared and neither nil, false, zero nor empty.
func (v Value) Truthy() bool {
	if !v.defined || v.raw == nil {
		return false
	}

	switch raw := v.raw.(type) {
	case bool:
		return raw
	case string:
		return raw != ""
	case int:
		return raw != 0
	case int64:
		return raw != 0
	case uint64:
		return raw != 0
	case float64:
		return raw != 0
	}

	rv := reflect.ValueOf(v.raw)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	}

	return true
}

// String returns the textual form of a scalar value.
// Floats use their shortest representation, so 3.8 becomes "3.8".
func (v Value) String() (string, bool) {
	if !v.defined || v.raw == nil {
		return "", false
	}

	switch raw := v.raw.(type) {
	case string:
		return raw, true
	case bool:
		return strconv.FormatBool(raw), true
	case int:
		return strconv.Itoa(raw), true
	case int64:
		return strconv.FormatInt(raw, 10), true
	case uint64:
		return strconv.FormatUint(raw, 10), true
	case float64:
		return strconv.FormatFloat(raw, 'f', -1, 64), true
	}

	return "", false
}

// StringOr returns the textual form of the value when it is truthy, fallback otherwise.
func (v Value) StringOr(fallback string) string {
	if !v.Truthy() {
		return fallback
	}
	if s, ok := v.String(); ok {
		return s
	}

	return fallback
}

// Bool returns the value when it is a boolean.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, v.defined && ok
}

// Strings returns the value as a list of strings. Nil and undefined values give an empty list.
func (v Value) Strings() ([]string, error) {
	if !v.defined || v.raw == nil {
		return nil, nil
	}

	items, ok := v.raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v.raw)
	}

	res := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a string, got %T", i, item)
		}
		res = append(res, s)
	}

	return res, nil
}
