package profile

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a decimal number, tolerating surrounding whitespace.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	return f, true
}

// FormatNumber renders a parsed value back to its shortest decimal form,
// so whole numbers come out without a trailing ".0".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isWhole reports whether the value has no fractional part.
func isWhole(f float64) bool {
	return f == math.Floor(f)
}
