package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ExponentThreshold is the magnitude from which FormatDisplay switches to
// exponential notation.
const ExponentThreshold = 1e9

// FormatDisplay renders a result for the calculator screen. Magnitudes of
// at least ExponentThreshold use exponential notation ("1.2e+10"), anything
// else is printed as a plain decimal with the shortest exact digits.
func FormatDisplay(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	if math.Abs(v) >= ExponentThreshold {
		return formatExponent(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSpecial(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	case v == 0:
		return "0", true
	}
	return "", false
}

func formatExponent(v float64) string {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok || exp == "" {
		return s
	}
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + exp[:1] + digits
}

// formatOperand renders an operand the way it would have been typed.
func formatOperand(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseOperand reads the longest numeric prefix of s. Text without any
// digit, such as "." or "-", is NaN. Extra dots are ignored: "1.2.3" is 1.2.
func parseOperand(s string) float64 {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits = true
		}
	}
	if !digits {
		return math.NaN()
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}
