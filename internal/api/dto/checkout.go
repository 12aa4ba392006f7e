package dto

import (
	"github.com/salonhq/salonhq/internal/domain/checkout"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// StartCheckoutRequest opens a new checkout session.
type StartCheckoutRequest struct {
	BranchID      string  `json:"branch_id" binding:"required"`
	AppointmentID *string `json:"appointment_id,omitempty"`
	CustomerID    *string `json:"customer_id,omitempty"`
	IsIGST        bool    `json:"is_igst"`
}

func (r *StartCheckoutRequest) Validate() error {
	if r.BranchID == "" {
		return ierr.NewError("branch_id is required").
			WithHint("Branch is required to start a checkout").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AddItemRequest adds one priced unit to a session. UnitPrice overrides
// the catalog price when set; otherwise the catalog (or variant) price is
// resolved at add time and frozen on the line item.
type AddItemRequest struct {
	CatalogItemID string           `json:"catalog_item_id" binding:"required"`
	VariantID     *string          `json:"variant_id,omitempty"`
	Quantity      int              `json:"quantity" binding:"required"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	StylistID     *string          `json:"stylist_id,omitempty"`
	AssistantID   *string          `json:"assistant_id,omitempty"`
}

func (r *AddItemRequest) Validate() error {
	if r.CatalogItemID == "" {
		return ierr.NewError("catalog_item_id is required").
			WithHint("Select the item to add").
			Mark(ierr.ErrValidation)
	}
	if r.Quantity <= 0 {
		return ierr.NewError("quantity must be a positive integer").
			WithHint("Quantity must be at least 1").
			Mark(ierr.ErrValidation)
	}
	if r.UnitPrice != nil && r.UnitPrice.IsNegative() {
		return ierr.NewError("unit price must be non negative").
			WithHint("Price override cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UpdateItemRequest mutates quantity or staff assignment on a line item.
type UpdateItemRequest struct {
	Quantity    *int    `json:"quantity,omitempty"`
	StylistID   *string `json:"stylist_id,omitempty"`
	AssistantID *string `json:"assistant_id,omitempty"`
}

func (r *UpdateItemRequest) Validate() error {
	if r.Quantity != nil && *r.Quantity <= 0 {
		return ierr.NewError("quantity must be a positive integer").
			WithHint("Quantity must be at least 1; remove the item instead of zeroing it").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DiscountRequest applies a discount. Benefit-sourced discounts name the
// benefit and inherit its calculation and value; manual discounts carry
// their own figures and a mandatory reason.
type DiscountRequest struct {
	DiscountType types.DiscountType    `json:"discount_type" binding:"required"`
	SourceID     string                `json:"source_id,omitempty"`
	Calculation  types.CalculationType `json:"calculation,omitempty"`
	Value        decimal.Decimal       `json:"value,omitempty"`
	AppliedTo    types.DiscountTarget  `json:"applied_to" binding:"required"`
	ItemID       *string               `json:"item_id,omitempty"`
	Reason       *string               `json:"reason,omitempty"`
}

func (r *DiscountRequest) Validate() error {
	if err := r.DiscountType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid discount type").
			Mark(ierr.ErrValidation)
	}
	if err := r.AppliedTo.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid discount target").
			Mark(ierr.ErrValidation)
	}
	if r.AppliedTo == types.DiscountTargetItem && r.ItemID == nil {
		return ierr.NewError("item discount requires an item id").
			WithHint("Select the item the discount applies to").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CreditRequest redeems a post-tax settlement credit against the session.
type CreditRequest struct {
	CreditType types.CreditType `json:"credit_type" binding:"required"`
	Amount     decimal.Decimal  `json:"amount" binding:"required"`
}

func (r *CreditRequest) Validate() error {
	if err := r.CreditType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid credit type").
			Mark(ierr.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("credit amount must be positive").
			WithHint("Credit amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SetTipRequest sets the tip amount on a session.
type SetTipRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r *SetTipRequest) Validate() error {
	if r.Amount.IsNegative() {
		return ierr.NewError("tip must be non negative").
			WithHint("Tip amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentRequest records one or more payment instruments against the
// session. A split settlement arrives as a batch so the whole split lands
// atomically or not at all.
type PaymentRequest struct {
	Payments []PaymentEntryRequest `json:"payments" binding:"required"`
}

// PaymentEntryRequest is one instrument within a payment batch.
type PaymentEntryRequest struct {
	PaymentMethod types.PaymentMethod `json:"payment_method" binding:"required"`
	Amount        decimal.Decimal     `json:"amount" binding:"required"`
	CardLastFour  *string             `json:"card_last_four,omitempty"`
	UPIID         *string             `json:"upi_id,omitempty"`
	TransactionID *string             `json:"transaction_id,omitempty"`
}

func (r *PaymentRequest) Validate() error {
	if len(r.Payments) == 0 {
		return ierr.NewError("at least one payment entry is required").
			WithHint("Provide at least one payment").
			Mark(ierr.ErrValidation)
	}
	for _, p := range r.Payments {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *PaymentEntryRequest) Validate() error {
	if err := r.PaymentMethod.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid payment method").
			Mark(ierr.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CompleteCheckoutRequest finalizes a settled session into an invoice.
type CompleteCheckoutRequest struct {
	ReceiptMethod types.ReceiptMethod `json:"receipt_method,omitempty"`
}

func (r *CompleteCheckoutRequest) Validate() error {
	if r.ReceiptMethod == "" {
		return nil
	}
	if err := r.ReceiptMethod.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid receipt method").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SessionResponse is the API shape of a checkout session.
type SessionResponse struct {
	*checkout.Session
}

func NewSessionResponse(s *checkout.Session) *SessionResponse {
	return &SessionResponse{Session: s}
}
