package ratetable

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// convertedPrecision is the number of fractional digits shown for converted amounts.
const convertedPrecision = 4

// SymbolFor returns the display glyph for a currency code.
// Unknown codes map to an empty string.
func SymbolFor(code string) string {
	switch code {
	case "SAR":
		return "﷼"
	case "AED":
		return "د.إ"
	case "EUR":
		return "€"
	case "INR":
		return "₹"
	case "USD":
		return "$"
	default:
		return ""
	}
}

// Format renders an amount with exactly four fractional digits and the
// currency symbol placed per currency:
//
//	SAR -> 100.0000 ﷼
//	AED -> د.إ 100.0000
//	EUR -> €100.0000 (likewise INR, USD and unknown codes)
//
// An invalid (null) amount renders as an empty string so callers can tell
// "no value" apart from zero.
func Format(amount decimal.NullDecimal, code string) string {
	if !amount.Valid {
		return ""
	}
	fixed := amount.Decimal.StringFixed(convertedPrecision)
	sym := SymbolFor(code)
	switch code {
	case "SAR":
		return fixed + " " + sym
	case "AED":
		return sym + " " + fixed
	default:
		return sym + fixed
	}
}

// Placeholder is shown in the converted cell while no amount has been typed.
func Placeholder(code string) string {
	return code + " " + SymbolFor(code)
}

// ToNum coerces typed text into a number. Anything that does not parse as a
// number, including the empty string and partially typed input such as "1e"
// or "-", becomes zero. So does a value outside float64 range.
func ToNum(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return finite(d)
}

// float64 order-of-magnitude bounds: anything at or above 10^309 overflows,
// anything below 10^-324 underflows to zero.
const (
	maxMagnitude = 309
	minMagnitude = -323
)

// finite returns d when it lies inside float64 range and zero otherwise.
// The magnitude is checked from the coefficient length and exponent first so
// inputs like "1e100000000" are rejected without expanding them.
func finite(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	mag := int64(d.NumDigits()) + int64(d.Exponent())
	if mag > maxMagnitude || mag < minMagnitude {
		return decimal.Zero
	}
	if f, _ := d.Float64(); math.IsInf(f, 0) {
		return decimal.Zero
	}
	return d
}

// SafeDate keeps only the date part of an ISO date-time and renders a
// missing date as "-".
func SafeDate(d string) string {
	if d == "" {
		return "-"
	}
	if date, _, found := strings.Cut(d, "T"); found {
		return date
	}
	return d
}
