package checkout

import (
	"time"

	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// Session is the root aggregate for one in-progress checkout: the mutable
// billing record for a customer visit before it is finalized into an
// invoice. Exactly one active (non-terminal) session may exist per
// appointment at a time.
type Session struct {
	ID            string  `json:"id"`
	BranchID      string  `json:"branch_id"`
	AppointmentID *string `json:"appointment_id,omitempty"`
	CustomerID    *string `json:"customer_id,omitempty"`
	SessionStatus types.SessionStatus `json:"session_status"`
	// IsIGST selects inter-state tax treatment for every line item
	IsIGST bool `json:"is_igst"`

	// LineItems keeps insertion order; it is also the billing order
	LineItems        []*LineItem        `json:"line_items"`
	AppliedDiscounts []*AppliedDiscount `json:"applied_discounts"`
	Payments         []*PaymentEntry    `json:"payments"`

	// Post-tax settlement credits and tip
	LoyaltyDiscount decimal.Decimal `json:"loyalty_discount"`
	WalletUsed      decimal.Decimal `json:"wallet_used"`
	TipAmount       decimal.Decimal `json:"tip_amount"`

	// Totals is derived; recomputed on every mutation, never authoritative
	Totals Totals `json:"totals"`

	// InvoiceID is set once on completion and makes completion idempotent
	InvoiceID *string   `json:"invoice_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`

	// Version is the optimistic concurrency column
	Version int `json:"version"`

	types.BaseModel
}

// LineItem is one priced unit (service, product, combo or package) in a
// session.
type LineItem struct {
	ID          string             `json:"id"`
	ItemType    types.LineItemType `json:"item_type"`
	ReferenceID string             `json:"reference_id"`
	VariantID   *string            `json:"variant_id,omitempty"`
	Name        string             `json:"name"`

	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	// GrossAmount = UnitPrice * Quantity
	GrossAmount decimal.Decimal `json:"gross_amount"`
	// DiscountAmount is the sum of discounts apportioned to this item
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	// TaxableAmount = GrossAmount - DiscountAmount, never negative
	TaxableAmount decimal.Decimal `json:"taxable_amount"`

	TaxRate decimal.Decimal `json:"tax_rate"`
	Tax     TaxBreakup      `json:"tax"`
	// NetAmount = TaxableAmount + Tax.TotalTax
	NetAmount decimal.Decimal `json:"net_amount"`

	// Staff assignment; commission fields are advisory and excluded from totals
	StylistID      *string          `json:"stylist_id,omitempty"`
	AssistantID    *string          `json:"assistant_id,omitempty"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
}

// CommissionAmount returns the advisory commission for the assigned stylist.
// It is computed on the pre-discount gross and never feeds into totals.
func (li *LineItem) CommissionAmount() decimal.Decimal {
	if li.CommissionRate == nil {
		return decimal.Zero
	}
	return types.RoundAmount(li.GrossAmount.Mul(*li.CommissionRate).Div(decimal.NewFromInt(100)))
}

// TaxBreakup holds the per-item GST split. Exactly one of (CGST+SGST) or
// IGST is nonzero, selected by the session-level IsIGST flag.
type TaxBreakup struct {
	CGSTRate   decimal.Decimal `json:"cgst_rate"`
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTRate   decimal.Decimal `json:"sgst_rate"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`
	IGSTRate   decimal.Decimal `json:"igst_rate"`
	IGSTAmount decimal.Decimal `json:"igst_amount"`
	TotalTax   decimal.Decimal `json:"total_tax"`
}

// AppliedDiscount is one computed reduction tied to a discount source and a
// target (the whole subtotal or a specific item).
type AppliedDiscount struct {
	ID           string             `json:"id"`
	DiscountType types.DiscountType `json:"discount_type"`
	// Source references the benefit that granted the discount; empty for manual
	Source      string                `json:"source,omitempty"`
	Calculation types.CalculationType `json:"calculation"`
	// Value is the percentage or flat figure the amount was computed from
	Value decimal.Decimal `json:"value"`
	// MaxAmount caps the computed amount; copied from the benefit at apply time
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
	// Amount is the computed reduction after caps
	Amount    decimal.Decimal      `json:"amount"`
	AppliedTo types.DiscountTarget `json:"applied_to"`
	ItemID    *string              `json:"item_id,omitempty"`
	// Reason is required for manual discounts
	Reason    *string   `json:"reason,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

// PaymentEntry is one payment instrument used to settle the session.
// Split payments are a sequence of entries.
type PaymentEntry struct {
	ID            string              `json:"id"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	CardLastFour  *string             `json:"card_last_four,omitempty"`
	UPIID         *string             `json:"upi_id,omitempty"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	ReceivedAt    time.Time           `json:"received_at"`
}

func (p *PaymentEntry) Validate() error {
	if err := p.PaymentMethod.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid payment method").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Totals is the derived summary folded from line items, discounts, credits,
// tip and payments. It is a pure function of the rest of the session.
type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount"`
	TaxTotal        decimal.Decimal `json:"tax_total"`
	LoyaltyDiscount decimal.Decimal `json:"loyalty_discount"`
	WalletUsed      decimal.Decimal `json:"wallet_used"`
	TipAmount       decimal.Decimal `json:"tip_amount"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountDue       decimal.Decimal `json:"amount_due"`
}

// CanMutate returns an invalid state error when the session is terminal.
func (s *Session) CanMutate() error {
	if s.SessionStatus.IsTerminal() {
		return ierr.NewError("session is no longer mutable").
			WithHintf("Checkout session is %s", s.SessionStatus).
			WithReportableDetails(map[string]any{
				"session_id": s.ID,
				"status":     s.SessionStatus,
			}).
			Mark(ierr.ErrInvalidState)
	}
	return nil
}

// IsExpired reports whether the session TTL has elapsed
func (s *Session) IsExpired(now time.Time) bool {
	return !s.SessionStatus.IsTerminal() && now.After(s.ExpiresAt)
}

// FindItem returns the line item with the given id, or nil
func (s *Session) FindItem(itemID string) *LineItem {
	for _, li := range s.LineItems {
		if li.ID == itemID {
			return li
		}
	}
	return nil
}

// FindDiscount returns the applied discount with the given id, or nil
func (s *Session) FindDiscount(discountID string) *AppliedDiscount {
	for _, d := range s.AppliedDiscounts {
		if d.ID == discountID {
			return d
		}
	}
	return nil
}

// Validate checks the structural invariants of the session: per-item
// arithmetic identities, the tax-split exclusivity, and the payment sum
// bound.
func (s *Session) Validate() error {
	for _, li := range s.LineItems {
		if li.Quantity <= 0 {
			return ierr.NewError("quantity must be a positive integer").
				WithHint("Line item quantity must be at least 1").
				WithReportableDetails(map[string]any{"item_id": li.ID}).
				Mark(ierr.ErrValidation)
		}
		if li.TaxableAmount.IsNegative() {
			return ierr.NewError("taxable amount must be non negative").
				WithReportableDetails(map[string]any{"item_id": li.ID}).
				Mark(ierr.ErrValidation)
		}
		if !li.NetAmount.Equal(li.TaxableAmount.Add(li.Tax.TotalTax)) {
			return ierr.NewError("net amount must equal taxable amount plus tax").
				WithReportableDetails(map[string]any{"item_id": li.ID}).
				Mark(ierr.ErrValidation)
		}
		intraState := li.Tax.CGSTAmount.Add(li.Tax.SGSTAmount)
		if intraState.IsPositive() && li.Tax.IGSTAmount.IsPositive() {
			return ierr.NewError("line item carries both intra and inter state tax").
				WithReportableDetails(map[string]any{"item_id": li.ID}).
				Mark(ierr.ErrValidation)
		}
	}

	for _, d := range s.AppliedDiscounts {
		if d.DiscountType == types.DiscountTypeManual && (d.Reason == nil || *d.Reason == "") {
			return ierr.NewError("manual discount requires a reason").
				WithHint("A reason is required for manual discounts").
				Mark(ierr.ErrValidation)
		}
		if d.AppliedTo == types.DiscountTargetItem && d.ItemID == nil {
			return ierr.NewError("item discount requires an item id").
				Mark(ierr.ErrValidation)
		}
	}

	paid := decimal.Zero
	for _, p := range s.Payments {
		if err := p.Validate(); err != nil {
			return err
		}
		paid = paid.Add(p.Amount)
	}
	if paid.Sub(s.Totals.GrandTotal).GreaterThan(types.AmountTolerance) {
		return ierr.NewError("payments exceed grand total").
			WithHint("Total payments cannot exceed the amount due").
			Mark(ierr.ErrValidation)
	}

	return nil
}
