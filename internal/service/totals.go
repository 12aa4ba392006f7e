package service

import (
	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// RecomputeTotals folds the full session state into its derived amounts:
// per-item gross, the ordered discount pass, per-item GST, and the totals
// block. It is a pure function of the session and runs after every mutation;
// nothing on the session is authoritative until it has.
func RecomputeTotals(s *checkout.Session) error {
	for _, li := range s.LineItems {
		li.GrossAmount = types.RoundAmount(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}

	if err := applyDiscounts(s); err != nil {
		return err
	}

	totals := checkout.Totals{
		LoyaltyDiscount: s.LoyaltyDiscount,
		WalletUsed:      s.WalletUsed,
		TipAmount:       s.TipAmount,
	}

	for _, li := range s.LineItems {
		li.TaxableAmount = li.GrossAmount.Sub(li.DiscountAmount)
		if li.TaxableAmount.IsNegative() {
			li.TaxableAmount = decimal.Zero
		}

		breakup, err := CalculateGST(li.TaxableAmount, li.TaxRate, s.IsIGST)
		if err != nil {
			return err
		}
		li.Tax = breakup
		li.NetAmount = li.TaxableAmount.Add(breakup.TotalTax)

		totals.Subtotal = totals.Subtotal.Add(li.GrossAmount)
		totals.DiscountTotal = totals.DiscountTotal.Add(li.DiscountAmount)
		totals.TaxableAmount = totals.TaxableAmount.Add(li.TaxableAmount)
		totals.CGSTAmount = totals.CGSTAmount.Add(breakup.CGSTAmount)
		totals.SGSTAmount = totals.SGSTAmount.Add(breakup.SGSTAmount)
		totals.IGSTAmount = totals.IGSTAmount.Add(breakup.IGSTAmount)
		totals.TaxTotal = totals.TaxTotal.Add(breakup.TotalTax)
	}

	// Settlement credits come off after tax; they can never push the grand
	// total negative, so clamp them against what remains (wallet first, then
	// loyalty) when an earlier mutation shrank the bill under them.
	preCredit := totals.TaxableAmount.Add(totals.TaxTotal).Add(totals.TipAmount)
	if totals.WalletUsed.GreaterThan(preCredit) {
		totals.WalletUsed = preCredit
		s.WalletUsed = preCredit
	}
	remaining := preCredit.Sub(totals.WalletUsed)
	if totals.LoyaltyDiscount.GreaterThan(remaining) {
		totals.LoyaltyDiscount = remaining
		s.LoyaltyDiscount = remaining
	}

	totals.GrandTotal = types.RoundAmount(
		preCredit.Sub(totals.LoyaltyDiscount).Sub(totals.WalletUsed))

	for _, p := range s.Payments {
		totals.AmountPaid = totals.AmountPaid.Add(p.Amount)
	}
	totals.AmountDue = totals.GrandTotal.Sub(totals.AmountPaid)
	if totals.AmountDue.IsNegative() {
		totals.AmountDue = decimal.Zero
	}

	s.Totals = totals
	return nil
}

// IsSettled reports whether the recorded payments cover the grand total
// within the reconciliation tolerance.
func IsSettled(s *checkout.Session) bool {
	return types.EqualWithinTolerance(s.Totals.AmountPaid, s.Totals.GrandTotal) ||
		s.Totals.AmountPaid.GreaterThan(s.Totals.GrandTotal)
}
