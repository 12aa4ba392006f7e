package types

import (
	"fmt"

	"github.com/samber/lo"
)

// SessionStatus represents the lifecycle state of a checkout session
type SessionStatus string

const (
	// SessionStatusOpen means the session is being built and can be mutated
	SessionStatusOpen SessionStatus = "open"
	// SessionStatusSettled means the amount due has reached zero; the session
	// is eligible for completion but may still fall back to open
	SessionStatusSettled SessionStatus = "settled"
	// SessionStatusCompleted means an invoice has been issued; terminal
	SessionStatusCompleted SessionStatus = "completed"
	// SessionStatusExpired means the session TTL elapsed without completion; terminal
	SessionStatusExpired SessionStatus = "expired"
)

func (s SessionStatus) String() string {
	return string(s)
}

func (s SessionStatus) Validate() error {
	allowed := []SessionStatus{
		SessionStatusOpen,
		SessionStatusSettled,
		SessionStatusCompleted,
		SessionStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid session status: %s", s)
	}
	return nil
}

// IsTerminal returns true for states that permit no further mutation
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusExpired
}

// LineItemType represents the kind of catalog entry a line item references
type LineItemType string

const (
	LineItemTypeService LineItemType = "service"
	LineItemTypeProduct LineItemType = "product"
	LineItemTypeCombo   LineItemType = "combo"
	LineItemTypePackage LineItemType = "package"
)

func (t LineItemType) String() string {
	return string(t)
}

func (t LineItemType) Validate() error {
	allowed := []LineItemType{
		LineItemTypeService,
		LineItemTypeProduct,
		LineItemTypeCombo,
		LineItemTypePackage,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid line item type: %s", t)
	}
	return nil
}

// DiscountType represents the source category of an applied discount
type DiscountType string

const (
	DiscountTypeMembership DiscountType = "membership"
	DiscountTypePackage    DiscountType = "package"
	DiscountTypeCoupon     DiscountType = "coupon"
	DiscountTypeLoyalty    DiscountType = "loyalty"
	DiscountTypeManual     DiscountType = "manual"
)

func (t DiscountType) String() string {
	return string(t)
}

func (t DiscountType) Validate() error {
	allowed := []DiscountType{
		DiscountTypeMembership,
		DiscountTypePackage,
		DiscountTypeCoupon,
		DiscountTypeLoyalty,
		DiscountTypeManual,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid discount type: %s", t)
	}
	return nil
}

// Priority returns the fixed application order of a discount type.
// Lower values apply first; each discount is computed against the taxable
// base as reduced by all higher-priority discounts.
func (t DiscountType) Priority() int {
	switch t {
	case DiscountTypeMembership:
		return 1
	case DiscountTypePackage:
		return 2
	case DiscountTypeCoupon:
		return 3
	case DiscountTypeLoyalty:
		return 4
	case DiscountTypeManual:
		return 5
	default:
		return 100
	}
}

// CalculationType represents how a discount amount is computed
type CalculationType string

const (
	CalculationTypePercentage CalculationType = "percentage"
	CalculationTypeFlat       CalculationType = "flat"
)

func (t CalculationType) String() string {
	return string(t)
}

func (t CalculationType) Validate() error {
	allowed := []CalculationType{
		CalculationTypePercentage,
		CalculationTypeFlat,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid calculation type: %s", t)
	}
	return nil
}

// DiscountTarget represents what a discount applies to
type DiscountTarget string

const (
	DiscountTargetSubtotal DiscountTarget = "subtotal"
	DiscountTargetItem     DiscountTarget = "item"
)

func (t DiscountTarget) String() string {
	return string(t)
}

func (t DiscountTarget) Validate() error {
	allowed := []DiscountTarget{
		DiscountTargetSubtotal,
		DiscountTargetItem,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid discount target: %s", t)
	}
	return nil
}

// PaymentMethod represents the instrument used to settle an invoice
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodWallet       PaymentMethod = "wallet"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodLoyalty      PaymentMethod = "loyalty"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodCard,
		PaymentMethodUPI,
		PaymentMethodWallet,
		PaymentMethodBankTransfer,
		PaymentMethodCheque,
		PaymentMethodLoyalty,
	}
	if !lo.Contains(allowed, m) {
		return fmt.Errorf("invalid payment method: %s", m)
	}
	return nil
}

// CreditType represents a post-tax settlement credit source.
// Credits reduce the amount owed after tax; they are not discounts on the
// taxable base because they represent already-taxed value returned to the
// customer.
type CreditType string

const (
	CreditTypeLoyalty CreditType = "loyalty"
	CreditTypeWallet  CreditType = "wallet"
)

func (t CreditType) String() string {
	return string(t)
}

func (t CreditType) Validate() error {
	allowed := []CreditType{
		CreditTypeLoyalty,
		CreditTypeWallet,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid credit type: %s", t)
	}
	return nil
}

// ReceiptMethod represents how a receipt is delivered on completion
type ReceiptMethod string

const (
	ReceiptMethodNone     ReceiptMethod = "none"
	ReceiptMethodEmail    ReceiptMethod = "email"
	ReceiptMethodSMS      ReceiptMethod = "sms"
	ReceiptMethodWhatsApp ReceiptMethod = "whatsapp"
)

func (m ReceiptMethod) String() string {
	return string(m)
}

func (m ReceiptMethod) Validate() error {
	allowed := []ReceiptMethod{
		ReceiptMethodNone,
		ReceiptMethodEmail,
		ReceiptMethodSMS,
		ReceiptMethodWhatsApp,
	}
	if !lo.Contains(allowed, m) {
		return fmt.Errorf("invalid receipt method: %s", m)
	}
	return nil
}

// BenefitType represents the kind of discount source a customer holds
type BenefitType string

const (
	BenefitTypeMembership BenefitType = "membership"
	BenefitTypePackage    BenefitType = "package"
	BenefitTypeCoupon     BenefitType = "coupon"
)

func (t BenefitType) String() string {
	return string(t)
}

func (t BenefitType) Validate() error {
	allowed := []BenefitType{
		BenefitTypeMembership,
		BenefitTypePackage,
		BenefitTypeCoupon,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid benefit type: %s", t)
	}
	return nil
}

// DiscountType returns the applied-discount category a benefit maps to
func (t BenefitType) DiscountType() DiscountType {
	switch t {
	case BenefitTypeMembership:
		return DiscountTypeMembership
	case BenefitTypePackage:
		return DiscountTypePackage
	case BenefitTypeCoupon:
		return DiscountTypeCoupon
	default:
		return DiscountTypeManual
	}
}
