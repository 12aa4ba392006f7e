package customer

import (
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// Customer represents a salon customer with the balances the checkout
// engine settles against. The wider customer profile (visit history,
// preferences, consents) lives with the CRM collaborator.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	// GSTStateCode is the two-digit state code from the customer's GSTIN,
	// used to decide intra- vs inter-state tax treatment
	GSTStateCode string `json:"gst_state_code,omitempty"`
	// LoyaltyPoints is the redeemable points balance
	LoyaltyPoints decimal.Decimal `json:"loyalty_points"`
	// LoyaltyPointValue is the cash value of one point in the base currency
	LoyaltyPointValue decimal.Decimal `json:"loyalty_point_value"`
	// WalletBalance is the prepaid wallet balance
	WalletBalance decimal.Decimal `json:"wallet_balance"`

	types.BaseModel
}

// LoyaltyValue returns the cash-equivalent value of the points balance
func (c *Customer) LoyaltyValue() decimal.Decimal {
	return types.RoundAmount(c.LoyaltyPoints.Mul(c.LoyaltyPointValue))
}

func (c *Customer) Validate() error {
	if c.Name == "" {
		return ierr.NewError("customer name is required").
			WithHint("Customer name is required").
			Mark(ierr.ErrValidation)
	}
	if c.LoyaltyPoints.IsNegative() {
		return ierr.NewError("loyalty points must be non negative").
			WithHint("Loyalty points balance cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if c.WalletBalance.IsNegative() {
		return ierr.NewError("wallet balance must be non negative").
			WithHint("Wallet balance cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
