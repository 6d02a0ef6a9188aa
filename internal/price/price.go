// Package price holds the canonical numeric representation for unit prices.
// Input may use either a comma or a period as the decimal separator; the
// normalized form is a non-negative float rounded to two decimals, and the
// period form is what gets written to the remote store.
package price

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a locale-tolerant price string to its normalized value.
// An empty string parses to zero. Negative prices are rejected.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("parse price %q: negative value", s)
	}
	return Round(v), nil
}

// Round truncates v to two-decimal precision.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders a normalized price in the period-separated form used by the
// remote table schema.
func Format(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', 2, 64)
}
