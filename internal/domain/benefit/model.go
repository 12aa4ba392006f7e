package benefit

import (
	"time"

	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// Benefit is a discount source a customer holds: an active membership,
// a prepaid package with remaining credits, or a coupon. The checkout
// engine validates a benefit before turning it into an applied discount.
type Benefit struct {
	ID          string            `json:"id"`
	CustomerID  string            `json:"customer_id,omitempty"`
	BenefitType types.BenefitType `json:"benefit_type"`
	Name        string            `json:"name"`
	// Calculation and Value define the discount this benefit grants
	Calculation types.CalculationType `json:"calculation"`
	Value       decimal.Decimal       `json:"value"`
	// MaxDiscount caps the computed amount for percentage benefits
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
	// ExpiresAt is when the benefit stops being redeemable
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// RemainingCredits applies to packages; a package with zero credits
	// is exhausted
	RemainingCredits *int `json:"remaining_credits,omitempty"`
	// MaxRedemptions / TotalRedemptions apply to coupons
	MaxRedemptions   *int `json:"max_redemptions,omitempty"`
	TotalRedemptions int  `json:"total_redemptions"`

	types.BaseModel
}

// CanApply reports whether the benefit is redeemable at the given time.
// Expired or exhausted sources surface as business rule errors so the
// client can present a specific remedy.
func (b *Benefit) CanApply(now time.Time) error {
	if b.Status != types.StatusActive {
		return ierr.NewError("benefit is not active").
			WithHint("This benefit is no longer active").
			WithReportableDetails(map[string]any{"benefit_id": b.ID}).
			Mark(ierr.ErrBusinessRule)
	}
	if b.ExpiresAt != nil && now.After(*b.ExpiresAt) {
		return ierr.NewError("benefit has expired").
			WithHintf("%s expired on %s", b.Name, b.ExpiresAt.Format("2006-01-02")).
			WithReportableDetails(map[string]any{
				"benefit_id": b.ID,
				"expired_at": b.ExpiresAt,
			}).
			Mark(ierr.ErrBusinessRule)
	}
	if b.RemainingCredits != nil && *b.RemainingCredits <= 0 {
		return ierr.NewError("package credits exhausted").
			WithHintf("%s has no remaining credits", b.Name).
			WithReportableDetails(map[string]any{"benefit_id": b.ID}).
			Mark(ierr.ErrBusinessRule)
	}
	if b.MaxRedemptions != nil && b.TotalRedemptions >= *b.MaxRedemptions {
		return ierr.NewError("coupon redemption limit reached").
			WithHintf("%s has reached its redemption limit", b.Name).
			WithReportableDetails(map[string]any{"benefit_id": b.ID}).
			Mark(ierr.ErrBusinessRule)
	}
	return nil
}

func (b *Benefit) Validate() error {
	if err := b.BenefitType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid benefit type").
			Mark(ierr.ErrValidation)
	}
	if err := b.Calculation.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid calculation type").
			Mark(ierr.ErrValidation)
	}
	if b.Value.IsNegative() {
		return ierr.NewError("benefit value must be non negative").
			WithHint("Benefit value cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if b.Calculation == types.CalculationTypePercentage && b.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("percentage value must not exceed 100").
			WithHint("Percentage benefits cannot exceed 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}
