package types

import "github.com/shopspring/decimal"

// RoundAmount rounds a monetary amount to 2 decimal places using half-up
// rounding. All per-item tax and discount amounts pass through this, so
// cross-item totals can drift by up to 0.01 per invoice.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AmountTolerance is the floating tolerance used when comparing settlement
// amounts against the grand total. Overridden at startup from
// checkout.payment_tolerance.
var AmountTolerance = decimal.NewFromFloat(0.01)

// SetAmountTolerance overrides the settlement tolerance. Non-positive
// values are ignored so a missing config key keeps the default.
func SetAmountTolerance(v float64) {
	if v > 0 {
		AmountTolerance = decimal.NewFromFloat(v)
	}
}

// EqualWithinTolerance reports whether a and b differ by at most the
// settlement tolerance.
func EqualWithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(AmountTolerance)
}
