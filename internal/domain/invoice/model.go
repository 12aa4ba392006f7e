package invoice

import (
	"time"

	"github.com/salonhq/salonhq/internal/domain/checkout"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
)

// Invoice is the immutable snapshot produced when a checkout session is
// completed. It copies the final line items, discounts, payments and
// totals; nothing on an invoice is ever mutated after issue.
type Invoice struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	SessionID     string  `json:"session_id"`
	BranchID      string  `json:"branch_id"`
	AppointmentID *string `json:"appointment_id,omitempty"`
	CustomerID    *string `json:"customer_id,omitempty"`
	IsIGST        bool    `json:"is_igst"`

	LineItems        []*checkout.LineItem        `json:"line_items"`
	AppliedDiscounts []*checkout.AppliedDiscount `json:"applied_discounts"`
	Payments         []*checkout.PaymentEntry    `json:"payments"`
	Totals           checkout.Totals             `json:"totals"`

	// IdempotencyKey ties the invoice back to the completion request so a
	// replayed completion resolves to the same invoice
	IdempotencyKey string              `json:"idempotency_key"`
	ReceiptMethod  types.ReceiptMethod `json:"receipt_method"`
	IssuedAt       time.Time           `json:"issued_at"`

	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.SessionID == "" {
		return ierr.NewError("session_id is required").
			WithHint("Invoice must reference its checkout session").
			Mark(ierr.ErrValidation)
	}
	if i.InvoiceNumber == "" {
		return ierr.NewError("invoice_number is required").
			WithHint("Invoice number is required").
			Mark(ierr.ErrValidation)
	}
	if len(i.LineItems) == 0 {
		return ierr.NewError("invoice must have at least one line item").
			WithHint("Cannot issue an invoice for an empty session").
			Mark(ierr.ErrValidation)
	}
	if i.Totals.GrandTotal.IsNegative() {
		return ierr.NewError("grand total must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
