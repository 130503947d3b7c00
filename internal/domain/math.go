package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	gramsPrecision = 4
	myrPrecision   = 2
)

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
// Missing or malformed upstream amounts fold to zero by policy instead of propagating
// an error.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeGrams converts an arbitrary decoded JSON value into a non-negative gram amount.
// Accepts float64, integers and numeric strings; everything else, including negative
// values, folds to zero (same policy as SafeParse).
func SafeGrams(v any) decimal.Decimal {
	var d decimal.Decimal
	switch n := v.(type) {
	case float64:
		d = decimal.NewFromFloat(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case decimal.Decimal:
		d = n
	case string:
		d = SafeParse(n)
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatGrams renders a gram quantity to 4 decimal places.
func FormatGrams(d decimal.Decimal) string {
	return d.StringFixed(gramsPrecision)
}

// FormatMYR renders a fiat amount with the RM currency prefix, 2 decimal places.
func FormatMYR(d decimal.Decimal) string {
	return "RM " + d.StringFixed(myrPrecision)
}

// PurityPct converts a basis-point purity (0-10000) to a percentage.
func PurityPct(bp decimal.Decimal) decimal.Decimal {
	return bp.Div(decimal.NewFromInt(100))
}

// RoundGrams rounds to gram precision and strips trailing zeros.
func RoundGrams(d decimal.Decimal) string {
	s := d.Round(gramsPrecision).StringFixed(gramsPrecision)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
