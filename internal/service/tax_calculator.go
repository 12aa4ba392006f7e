package service

import (
	"github.com/salonhq/salonhq/internal/domain/checkout"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateGST computes the GST split for one taxable base. Intra-state
// supplies split the rate evenly into CGST and SGST; inter-state supplies
// carry a single IGST at the full rate. Amounts are rounded half-up to two
// decimal places per item, which is where the tolerated ±0.01 cross-item
// drift on an invoice comes from.
//
// This is a pure function: invalid input is rejected, never retried.
func CalculateGST(taxableBase, taxRate decimal.Decimal, isIGST bool) (checkout.TaxBreakup, error) {
	if taxableBase.IsNegative() {
		return checkout.TaxBreakup{}, ierr.NewError("taxable base must be non negative").
			WithHint("Taxable amount cannot be negative").
			WithReportableDetails(map[string]any{
				"taxable_base": taxableBase.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return checkout.TaxBreakup{}, ierr.NewError("tax rate out of range").
			WithHint("Tax rate must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"tax_rate": taxRate.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	var breakup checkout.TaxBreakup
	if isIGST {
		breakup.IGSTRate = taxRate
		breakup.IGSTAmount = types.RoundAmount(taxableBase.Mul(taxRate).Div(hundred))
	} else {
		halfRate := taxRate.Div(decimal.NewFromInt(2))
		half := types.RoundAmount(taxableBase.Mul(halfRate).Div(hundred))
		breakup.CGSTRate = halfRate
		breakup.CGSTAmount = half
		breakup.SGSTRate = halfRate
		breakup.SGSTAmount = half
	}
	breakup.TotalTax = breakup.CGSTAmount.Add(breakup.SGSTAmount).Add(breakup.IGSTAmount)
	return breakup, nil
}
