package canonical

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat writes a finite float in shortest round-trip form: plain
// decimal notation for magnitudes in [1e-6, 1e21), exponent notation
// ("1e+21", "1.5e-7") outside it. Negative zero is written as "0".
func FormatFloat(f float64) string {
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
