package service

import (
	"sort"
	"time"

	"github.com/salonhq/salonhq/internal/api/dto"
	"github.com/salonhq/salonhq/internal/domain/benefit"
	"github.com/salonhq/salonhq/internal/domain/checkout"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// applyDiscounts recomputes every applied discount against the current line
// items. Discounts apply in fixed priority order (membership, package,
// coupon, manual), ties broken by application time; each one is computed
// against the taxable base as already reduced by higher-priority discounts
// and in turn reduces the running base for the rest. Item discount amounts
// are rebuilt from scratch on every pass, so removal is plain omission.
func applyDiscounts(s *checkout.Session) error {
	for _, li := range s.LineItems {
		li.DiscountAmount = decimal.Zero
	}

	ordered := make([]*checkout.AppliedDiscount, len(s.AppliedDiscounts))
	copy(ordered, s.AppliedDiscounts)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i].DiscountType.Priority(), ordered[j].DiscountType.Priority()
		if pi != pj {
			return pi < pj
		}
		return ordered[i].AppliedAt.Before(ordered[j].AppliedAt)
	})

	for _, d := range ordered {
		switch d.AppliedTo {
		case types.DiscountTargetItem:
			li := s.FindItem(*d.ItemID)
			if li == nil {
				return ierr.NewError("discount target not found").
					WithHint("The discounted item is no longer in the session").
					WithReportableDetails(map[string]any{
						"discount_id": d.ID,
						"item_id":     *d.ItemID,
					}).
					Mark(ierr.ErrBusinessRule)
			}
			base := li.GrossAmount.Sub(li.DiscountAmount)
			amount := computeDiscountAmount(d.Calculation, d.Value, d.MaxAmount, base)
			li.DiscountAmount = li.DiscountAmount.Add(amount)
			d.Amount = amount

		case types.DiscountTargetSubtotal:
			amount, err := apportionSubtotalDiscount(s, d)
			if err != nil {
				return err
			}
			d.Amount = amount
		}
	}

	return nil
}

// computeDiscountAmount computes a single discount against its base, capped
// first by the benefit's maximum and then so the remaining taxable amount
// never goes negative.
func computeDiscountAmount(calc types.CalculationType, value decimal.Decimal, max *decimal.Decimal, base decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch calc {
	case types.CalculationTypePercentage:
		amount = types.RoundAmount(base.Mul(value).Div(hundred))
	case types.CalculationTypeFlat:
		amount = types.RoundAmount(value)
	}
	if max != nil && amount.GreaterThan(*max) {
		amount = *max
	}
	if amount.GreaterThan(base) {
		amount = base
	}
	return amount
}

// apportionSubtotalDiscount spreads a subtotal-level discount across line
// items pro-rata to their remaining taxable amounts, rounding each share
// and pushing the residual onto the last carrying item so the shares sum
// exactly to the discount amount.
func apportionSubtotalDiscount(s *checkout.Session, d *checkout.AppliedDiscount) (decimal.Decimal, error) {
	base := decimal.Zero
	for _, li := range s.LineItems {
		base = base.Add(li.GrossAmount.Sub(li.DiscountAmount))
	}
	if base.IsZero() {
		return decimal.Zero, nil
	}

	amount := computeDiscountAmount(d.Calculation, d.Value, d.MaxAmount, base)
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	allocated := decimal.Zero
	var last *checkout.LineItem
	for _, li := range s.LineItems {
		remaining := li.GrossAmount.Sub(li.DiscountAmount)
		if !remaining.IsPositive() {
			continue
		}
		share := types.RoundAmount(amount.Mul(remaining).Div(base))
		li.DiscountAmount = li.DiscountAmount.Add(share)
		allocated = allocated.Add(share)
		last = li
	}
	if last != nil && !allocated.Equal(amount) {
		last.DiscountAmount = last.DiscountAmount.Add(amount.Sub(allocated))
	}
	return amount, nil
}

// buildAppliedDiscount validates a discount request against its source and
// produces the applied-discount record. The amount is left zero; the next
// recompute pass fills it in against the running base.
func buildAppliedDiscount(
	req dto.DiscountRequest,
	source *benefit.Benefit,
	now time.Time,
) (*checkout.AppliedDiscount, error) {
	if req.DiscountType == types.DiscountTypeLoyalty {
		return nil, ierr.NewError("loyalty is redeemed as a settlement credit").
			WithHint("Redeem loyalty points through the credit operation; they reduce the amount due after tax").
			Mark(ierr.ErrValidation)
	}
	if err := req.Calculation.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid calculation type").
			Mark(ierr.ErrValidation)
	}
	if !req.Value.IsPositive() {
		return nil, ierr.NewError("discount value must be positive").
			WithHint("Discount value must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if req.Calculation == types.CalculationTypePercentage && req.Value.GreaterThan(hundred) {
		return nil, ierr.NewError("percentage discount must not exceed 100").
			WithHint("Percentage discounts cannot exceed 100").
			Mark(ierr.ErrValidation)
	}
	if req.DiscountType == types.DiscountTypeManual && (req.Reason == nil || *req.Reason == "") {
		return nil, ierr.NewError("manual discount requires a reason").
			WithHint("A reason is required for manual discounts").
			Mark(ierr.ErrValidation)
	}

	var sourceID string
	var maxAmount *decimal.Decimal
	if source != nil {
		if err := source.CanApply(now); err != nil {
			return nil, err
		}
		sourceID = source.ID
		maxAmount = source.MaxDiscount
	}

	return &checkout.AppliedDiscount{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_APPLIED_DISCOUNT),
		DiscountType: req.DiscountType,
		Source:       sourceID,
		Calculation:  req.Calculation,
		Value:        req.Value,
		MaxAmount:    maxAmount,
		AppliedTo:    req.AppliedTo,
		ItemID:       req.ItemID,
		Reason:       req.Reason,
		AppliedAt:    now,
	}, nil
}
