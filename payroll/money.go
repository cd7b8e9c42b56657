package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY HELPERS - Cent rounding and decimal construction
// =============================================================================

// Monetary amounts are plain decimal.Decimal values. These helpers pin
// down the two conventions the engine relies on everywhere:
//
//   1. Rounding is to exactly 2 places, HALF-UP: 0.005 rounds to 0.01.
//      (decimal.Round is half-away-from-zero, which equals half-up for
//      the non-negative magnitudes rounded here.)
//   2. Rate/threshold constants are parsed from strings so table data is
//      exact, never subject to float conversion.

// Cents rounds a monetary amount to 2 decimal places, half-up.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// d is shorthand for building exact decimals from table literals.
// Panics on malformed input; only ever called with compile-time constants.
func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic("payroll: bad decimal literal " + s)
	}
	return v
}

// maxZero clamps a decimal at zero from below.
func maxZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
