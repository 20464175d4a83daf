// Package odds converts bookmaker price tokens into canonical decimal odds.
package odds

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

const (
	// MinValid is the lowest decimal price accepted from a page.
	MinValid = 1.01
	// MaxValid is the highest decimal price accepted from a page.
	MaxValid = 500.0
)

// Normalize converts a raw odds token to decimal odds.
//
// Supported formats:
//   - decimal:    "2.50" -> 2.50
//   - comma:      "2,60" -> 2.60
//   - fractional: "5/2"  -> 3.50
//   - American:   "+150" -> 2.50, "-200" -> 1.50
//
// Normalize never fails: unparseable input yields 0.
func Normalize(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")

	v, ok := parse(s)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		slog.Debug("Failed to parse odds", "raw", raw)
		return 0
	}
	return v
}

func parse(s string) (float64, bool) {
	switch {
	case strings.Contains(s, "/"):
		num, den, found := strings.Cut(s, "/")
		if !found || strings.Contains(den, "/") {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n/d + 1, true
	case strings.HasPrefix(s, "+"):
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil {
			return 0, false
		}
		return v/100 + 1, true
	case strings.HasPrefix(s, "-"):
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil || v == 0 {
			return 0, false
		}
		return 100/v + 1, true
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}

// IsValid reports whether a decimal price lies within [MinValid, MaxValid].
func IsValid(price float64) bool {
	return price >= MinValid && price <= MaxValid
}

// ValidPrices normalizes tokens and keeps, in order, the ones that pass IsValid.
func ValidPrices(tokens []string) []float64 {
	out := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		if p := Normalize(t); IsValid(p) {
			out = append(out, p)
		}
	}
	return out
}

// ImpliedProbability returns 1/price, or 0 for non-positive prices.
func ImpliedProbability(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return 1 / price
}

// DecimalToAmerican converts decimal odds to the American moneyline.
// Decimal 2.50 -> +150, decimal 1.50 -> -200. Prices <= 1 yield 0.
func DecimalToAmerican(price float64) int {
	if price <= 1 {
		return 0
	}
	if price >= 2 {
		return int(math.Round((price - 1) * 100))
	}
	return int(math.Round(-100 / (price - 1)))
}
