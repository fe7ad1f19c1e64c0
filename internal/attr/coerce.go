package attr

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/schemata/internal/canonical"
)

// TimeLayout is the layout times are projected with: UTC, millisecond
// precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// decimalLiteral matches the decimal number syntax accepted by ToFloat.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// coerce applies the scalar rule for t to a non-repeated value.
func (t Type) coerce(v any) (any, error) {
	if v == nil || t.Instance(v) {
		return v, nil
	}

	switch t.kind {
	case KindBool:
		return ToBool(v), nil
	case KindInt:
		return ToInt(v), nil
	case KindFloat:
		return ToFloat(v), nil
	case KindString:
		return ToString(v), nil
	case KindTime:
		return ToTime(v), nil
	case KindComposite:
		out, err := t.construct(v)
		if err != nil {
			return nil, fmt.Errorf("attr: construct %s: %w", t, err)
		}
		return out, nil
	}
	return nil, &ConfigurationError{Reason: fmt.Sprintf("no coercion for %s", t)}
}

// ToBool converts v by truthiness: false, zero, NaN, the empty string and
// numeric Invalid values are false; every other non-nil value is true,
// including the string "false" and an invalid time.
func ToBool(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case Invalid:
		return val.Kind == KindTime
	case json.Number:
		f := ToFloat(val)
		return f != 0 && !math.IsNaN(f)
	}

	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// ToFloat converts v to a number. Values without a numeric reading become
// NaN.
func ToFloat(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		return parseNumber(val)
	case json.Number:
		return parseNumber(string(val))
	case time.Time:
		return float64(val.UnixMilli())
	case Invalid:
		return math.NaN()
	}

	if f, ok := numeric(v); ok {
		return f
	}
	return math.NaN()
}

// ToInt converts v through ToFloat and truncates toward zero. Results that
// do not fit an int64 become Invalid.
func ToInt(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint32:
		return int64(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return n
		}
	}

	f := ToFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Invalid{Kind: KindInt, Input: v}
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return Invalid{Kind: KindInt, Input: v}
	}
	return int64(f)
}

// ToString converts v to its string form.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case json.Number:
		return val.String()
	case time.Time:
		return val.UTC().Format(TimeLayout)
	case Invalid:
		return "NaN"
	case fmt.Stringer:
		return val.String()
	}

	if seq, ok := asSequence(v); ok {
		parts := make([]string, len(seq))
		for i, elem := range seq {
			parts[i] = ToString(elem)
		}
		return strings.Join(parts, ",")
	}
	if f, ok := numeric(v); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(v)
}

// ToTime converts v to a UTC time. Strings are read as RFC 3339 or as a
// bare date; numbers as Unix milliseconds. Anything else is Invalid.
func ToTime(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		s := strings.TrimSpace(val)
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts.UTC()
		}
		if ts, err := time.Parse(time.DateOnly, s); err == nil {
			return ts.UTC()
		}
		return Invalid{Kind: KindTime, Input: v}
	}

	f := ToFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Invalid{Kind: KindTime, Input: v}
	}
	return time.UnixMilli(int64(f)).UTC()
}

// parseNumber reads s as a number: surrounding space is ignored, the empty
// string is zero, decimal literals, Infinity and 0x/0o/0b integers are
// accepted.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range literals overflow to infinity.
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return canonical.FormatFloat(f)
}

// numeric widens any Go integer or float kind to float64.
func numeric(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// asSequence returns the elements of any Go slice or array.
func asSequence(v any) ([]any, bool) {
	if seq, ok := v.([]any); ok {
		return seq, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	seq := make([]any, rv.Len())
	for i := range seq {
		seq[i] = rv.Index(i).Interface()
	}
	return seq, true
}
