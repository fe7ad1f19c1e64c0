package store

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

// Match reports whether d satisfies query, reading identifiers from the key
// field. Numbers that are not identifiers compare by value against the key
// field. Other unsupported query values fail with *QueryError.
func Match(d Data, key string, query any) (bool, error) {
	switch q := query.(type) {
	case nil:
		return true, nil
	case map[string]any:
		return Matches(d, q), nil
	}

	id, ok := Identifier(query)
	if !ok {
		if _, isNumber := number(query); isNumber {
			return Equal(d[key], query), nil
		}
		return false, &QueryError{Query: query}
	}
	have, ok := Identifier(d[key])
	return ok && have == id, nil
}

// Matches reports whether d holds every field of subset with an equal
// value. Numbers compare by value regardless of their Go type.
func Matches(d Data, subset map[string]any) bool {
	for k, want := range subset {
		have, ok := d[k]
		if !ok || !Equal(have, want) {
			return false
		}
	}
	return true
}

// Equal compares plain values. Numbers compare by value, maps and slices
// element-wise.
func Equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}

	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		return Matches(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// KeyOf returns the identifier stored under key in d. A missing or nil key
// reports ok false, so the caller assigns one. Any other value that is not
// an identifier fails with *KeyError.
func KeyOf(d Data, key string) (id string, ok bool, err error) {
	v := d[key]
	if v == nil {
		return "", false, nil
	}
	id, ok = Identifier(v)
	if !ok {
		return "", false, &KeyError{Key: key, Value: v}
	}
	return id, true, nil
}

// Identifier normalises an identifier value to its string key. Strings are
// used as is; integers, integral floats and integral json.Number values are
// formatted in base 10.
func Identifier(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		return integral(val)
	case float32, float64:
		return integral(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}

func integral(v any) (string, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatInt(int64(f), 10), true
}

func number(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
