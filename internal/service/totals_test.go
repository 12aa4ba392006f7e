package service

import (
	"testing"
	"time"

	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(isIGST bool) *checkout.Session {
	return &checkout.Session{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SESSION),
		BranchID:      "branch_test",
		SessionStatus: types.SessionStatusOpen,
		IsIGST:        isIGST,
	}
}

func newTestItem(price float64, qty int, taxRate float64) *checkout.LineItem {
	return &checkout.LineItem{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
		ItemType:  types.LineItemTypeService,
		Name:      "Haircut",
		UnitPrice: decimal.NewFromFloat(price),
		Quantity:  qty,
		TaxRate:   decimal.NewFromFloat(taxRate),
	}
}

func subtotalDiscount(dt types.DiscountType, calc types.CalculationType, value float64, appliedAt time.Time) *checkout.AppliedDiscount {
	return &checkout.AppliedDiscount{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_APPLIED_DISCOUNT),
		DiscountType: dt,
		Calculation:  calc,
		Value:        decimal.NewFromFloat(value),
		AppliedTo:    types.DiscountTargetSubtotal,
		AppliedAt:    appliedAt,
	}
}

func TestRecomputeTotals_SingleItemIntraState(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(1000, 1, 18)}

	require.NoError(t, RecomputeTotals(s))

	li := s.LineItems[0]
	assert.True(t, li.GrossAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, li.Tax.CGSTAmount.Equal(decimal.NewFromInt(90)))
	assert.True(t, li.Tax.SGSTAmount.Equal(decimal.NewFromInt(90)))
	assert.True(t, li.NetAmount.Equal(decimal.NewFromInt(1180)))
	assert.True(t, s.Totals.GrandTotal.Equal(decimal.NewFromInt(1180)))
	assert.True(t, s.Totals.AmountDue.Equal(decimal.NewFromInt(1180)))
}

func TestRecomputeTotals_DiscountOrdering(t *testing.T) {
	// 10 percent membership runs before the flat 50 coupon regardless of
	// the order they were added: 1000 -> 900 -> 850
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(1000, 1, 18)}
	now := time.Now().UTC()
	s.AppliedDiscounts = []*checkout.AppliedDiscount{
		subtotalDiscount(types.DiscountTypeCoupon, types.CalculationTypeFlat, 50, now),
		subtotalDiscount(types.DiscountTypeMembership, types.CalculationTypePercentage, 10, now.Add(time.Second)),
	}

	require.NoError(t, RecomputeTotals(s))

	assert.True(t, s.Totals.TaxableAmount.Equal(decimal.NewFromInt(850)),
		"expected 850 got %s", s.Totals.TaxableAmount)
	for _, d := range s.AppliedDiscounts {
		if d.DiscountType == types.DiscountTypeMembership {
			assert.True(t, d.Amount.Equal(decimal.NewFromInt(100)))
		} else {
			assert.True(t, d.Amount.Equal(decimal.NewFromInt(50)))
		}
	}
	// Tax computed on the discounted base
	assert.True(t, s.Totals.TaxTotal.Equal(decimal.NewFromInt(153)))
	assert.True(t, s.Totals.GrandTotal.Equal(decimal.NewFromInt(1003)))
}

func TestRecomputeTotals_TieBreakByApplicationTime(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(1000, 1, 0)}
	now := time.Now().UTC()
	first := subtotalDiscount(types.DiscountTypeCoupon, types.CalculationTypePercentage, 10, now)
	second := subtotalDiscount(types.DiscountTypeCoupon, types.CalculationTypePercentage, 10, now.Add(time.Second))
	s.AppliedDiscounts = []*checkout.AppliedDiscount{second, first}

	require.NoError(t, RecomputeTotals(s))

	// first: 100 off 1000; second: 90 off 900
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(90)))
}

func TestRecomputeTotals_FlatDiscountCappedAtBase(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(100, 1, 18)}
	s.AppliedDiscounts = []*checkout.AppliedDiscount{
		subtotalDiscount(types.DiscountTypeCoupon, types.CalculationTypeFlat, 500, time.Now().UTC()),
	}

	require.NoError(t, RecomputeTotals(s))

	assert.True(t, s.Totals.TaxableAmount.IsZero())
	assert.True(t, s.Totals.TaxTotal.IsZero())
	assert.True(t, s.Totals.GrandTotal.IsZero())
	assert.True(t, s.AppliedDiscounts[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestRecomputeTotals_MaxDiscountCap(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(2000, 1, 18)}
	maxAmount := decimal.NewFromInt(150)
	d := subtotalDiscount(types.DiscountTypeMembership, types.CalculationTypePercentage, 20, time.Now().UTC())
	d.MaxAmount = &maxAmount
	s.AppliedDiscounts = []*checkout.AppliedDiscount{d}

	require.NoError(t, RecomputeTotals(s))

	// 20% of 2000 is 400, capped to 150
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(150)))
	assert.True(t, s.Totals.TaxableAmount.Equal(decimal.NewFromInt(1850)))
}

func TestRecomputeTotals_SubtotalApportionment(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{
		newTestItem(600, 1, 18),
		newTestItem(400, 1, 5),
	}
	s.AppliedDiscounts = []*checkout.AppliedDiscount{
		subtotalDiscount(types.DiscountTypeCoupon, types.CalculationTypePercentage, 10, time.Now().UTC()),
	}

	require.NoError(t, RecomputeTotals(s))

	// 100 split 60/40 by share of the base
	assert.True(t, s.LineItems[0].DiscountAmount.Equal(decimal.NewFromInt(60)))
	assert.True(t, s.LineItems[1].DiscountAmount.Equal(decimal.NewFromInt(40)))
	// per-item tax on the discounted bases
	assert.True(t, s.LineItems[0].Tax.TotalTax.Equal(decimal.NewFromFloat(97.20)))
	assert.True(t, s.LineItems[1].Tax.TotalTax.Equal(decimal.NewFromInt(18)))
	assert.True(t, s.Totals.DiscountTotal.Equal(decimal.NewFromInt(100)))
}

func TestRecomputeTotals_ApportionmentResidualGoesToLastItem(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{
		newTestItem(100, 1, 0),
		newTestItem(100, 1, 0),
		newTestItem(100, 1, 0),
	}
	s.AppliedDiscounts = []*checkout.AppliedDiscount{
		subtotalDiscount(types.DiscountTypeCoupon, types.CalculationTypeFlat, 100, time.Now().UTC()),
	}

	require.NoError(t, RecomputeTotals(s))

	// 100/3 rounds to 33.33 per item; the last one absorbs the extra paisa
	sum := decimal.Zero
	for _, li := range s.LineItems {
		sum = sum.Add(li.DiscountAmount)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100)), "shares must sum exactly, got %s", sum)
	assert.True(t, s.LineItems[0].DiscountAmount.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, s.LineItems[1].DiscountAmount.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, s.LineItems[2].DiscountAmount.Equal(decimal.NewFromFloat(33.34)))
}

func TestRecomputeTotals_ItemTargetedDiscount(t *testing.T) {
	s := newTestSession(false)
	item1 := newTestItem(500, 1, 18)
	item2 := newTestItem(300, 1, 18)
	s.LineItems = []*checkout.LineItem{item1, item2}
	s.AppliedDiscounts = []*checkout.AppliedDiscount{{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_APPLIED_DISCOUNT),
		DiscountType: types.DiscountTypeCoupon,
		Calculation:  types.CalculationTypePercentage,
		Value:        decimal.NewFromInt(20),
		AppliedTo:    types.DiscountTargetItem,
		ItemID:       &item1.ID,
		AppliedAt:    time.Now().UTC(),
	}}

	require.NoError(t, RecomputeTotals(s))

	assert.True(t, item1.DiscountAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, item2.DiscountAmount.IsZero())
	assert.True(t, s.Totals.TaxableAmount.Equal(decimal.NewFromInt(700)))
}

func TestRecomputeTotals_CreditsComeOffAfterTax(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(1000, 1, 18)}
	s.LoyaltyDiscount = decimal.NewFromInt(100)
	s.WalletUsed = decimal.NewFromInt(80)
	s.TipAmount = decimal.NewFromInt(50)

	require.NoError(t, RecomputeTotals(s))

	// credits reduce the amount due, not the taxable base
	assert.True(t, s.Totals.TaxTotal.Equal(decimal.NewFromInt(180)))
	assert.True(t, s.Totals.GrandTotal.Equal(decimal.NewFromInt(1050)),
		"expected 1050 got %s", s.Totals.GrandTotal)
}

func TestRecomputeTotals_CreditsClampedWhenBillShrinks(t *testing.T) {
	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(100, 1, 0)}
	s.WalletUsed = decimal.NewFromInt(500)
	s.LoyaltyDiscount = decimal.NewFromInt(200)

	require.NoError(t, RecomputeTotals(s))

	assert.False(t, s.Totals.GrandTotal.IsNegative())
	assert.True(t, s.Totals.GrandTotal.IsZero())
	assert.True(t, s.WalletUsed.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.LoyaltyDiscount.IsZero())
}

func TestRecomputeTotals_EmptySession(t *testing.T) {
	s := newTestSession(false)

	require.NoError(t, RecomputeTotals(s))

	assert.True(t, s.Totals.Subtotal.IsZero())
	assert.True(t, s.Totals.GrandTotal.IsZero())
	assert.True(t, s.Totals.AmountDue.IsZero())
}

func TestIsSettled_HonorsConfiguredTolerance(t *testing.T) {
	types.SetAmountTolerance(0.05)
	defer types.SetAmountTolerance(0.01)

	s := newTestSession(false)
	s.LineItems = []*checkout.LineItem{newTestItem(1000, 1, 18)}
	s.Payments = []*checkout.PaymentEntry{{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ENTRY),
		PaymentMethod: types.PaymentMethodCash,
		Amount:        decimal.NewFromFloat(1179.96),
		ReceivedAt:    time.Now().UTC(),
	}}

	require.NoError(t, RecomputeTotals(s))

	// 0.04 short of 1180 settles under a 0.05 tolerance
	assert.True(t, IsSettled(s))

	types.SetAmountTolerance(0.01)
	assert.False(t, IsSettled(s))
}
