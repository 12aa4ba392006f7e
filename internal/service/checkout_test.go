package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/salonhq/salonhq/internal/api/dto"
	"github.com/salonhq/salonhq/internal/domain/benefit"
	"github.com/salonhq/salonhq/internal/domain/catalog"
	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/domain/customer"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/idempotency"
	"github.com/salonhq/salonhq/internal/testutil"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CheckoutServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  CheckoutService
	invoices InvoiceService

	testCustomer *customer.Customer
	testHaircut  *catalog.Item
	testShampoo  *catalog.Item
}

func TestCheckoutService(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		RBAC:           s.GetRBAC(),
		CustomerRepo:   s.GetStores().CustomerRepo,
		CatalogRepo:    s.GetStores().CatalogRepo,
		BenefitRepo:    s.GetStores().BenefitRepo,
		CheckoutRepo:   s.GetStores().CheckoutRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		IdempotencyGen: idempotency.NewGenerator(),
	}
	s.service = NewCheckoutService(params)
	s.invoices = NewInvoiceService(params)

	s.setupTestData()
}

func (s *CheckoutServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testCustomer = &customer.Customer{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:              "Priya Sharma",
		Phone:             "+919800000001",
		LoyaltyPoints:     decimal.NewFromInt(200),
		LoyaltyPointValue: decimal.NewFromFloat(0.5),
		WalletBalance:     decimal.NewFromInt(300),
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(ctx, s.testCustomer))

	s.testHaircut = &catalog.Item{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CATALOG_ITEM),
		ItemType:  types.LineItemTypeService,
		Name:      "Haircut",
		UnitPrice: decimal.NewFromInt(1000),
		TaxRate:   decimal.NewFromInt(18),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().CatalogRepo.Create(ctx, s.testHaircut))

	s.testShampoo = &catalog.Item{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CATALOG_ITEM),
		ItemType:  types.LineItemTypeProduct,
		Name:      "Shampoo",
		UnitPrice: decimal.NewFromInt(400),
		TaxRate:   decimal.NewFromInt(5),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().CatalogRepo.Create(ctx, s.testShampoo))
}

func (s *CheckoutServiceSuite) startSession() *checkout.Session {
	sess, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID:   "branch_test",
		CustomerID: &s.testCustomer.ID,
	})
	s.NoError(err)
	s.Require().NotNil(sess)
	return sess
}

func (s *CheckoutServiceSuite) addHaircut(sessionID string) *checkout.Session {
	sess, err := s.service.AddItem(s.GetContext(), sessionID, dto.AddItemRequest{
		CatalogItemID: s.testHaircut.ID,
		Quantity:      1,
	})
	s.NoError(err)
	return sess
}

func (s *CheckoutServiceSuite) TestStartCheckout() {
	sess := s.startSession()

	s.Equal(types.SessionStatusOpen, sess.SessionStatus)
	s.Equal("branch_test", sess.BranchID)
	s.True(sess.Totals.GrandTotal.IsZero())
	s.True(sess.ExpiresAt.After(time.Now().UTC()))
}

func (s *CheckoutServiceSuite) TestStartCheckout_DuplicateAppointmentReturnsExisting() {
	appointmentID := "appt-1"
	first, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID:      "branch_test",
		AppointmentID: &appointmentID,
	})
	s.NoError(err)

	second, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID:      "branch_test",
		AppointmentID: &appointmentID,
	})
	s.NoError(err)
	s.Equal(first.ID, second.ID)
}

// blindFirstLookupRepo simulates the race window where two starts both
// miss the active-session lookup: the first lookup reports not found, so
// the create runs into the store's uniqueness conflict.
type blindFirstLookupRepo struct {
	checkout.Repository
	lookups int32
}

func (r *blindFirstLookupRepo) GetActiveByAppointment(ctx context.Context, appointmentID string) (*checkout.Session, error) {
	if atomic.AddInt32(&r.lookups, 1) == 1 {
		return nil, ierr.NewError("no active checkout session for appointment").
			Mark(ierr.ErrNotFound)
	}
	return r.Repository.GetActiveByAppointment(ctx, appointmentID)
}

func (s *CheckoutServiceSuite) TestStartCheckout_ConcurrentStartResolvesToWinner() {
	appointmentID := "appt-race"

	winner, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID:      "branch_test",
		AppointmentID: &appointmentID,
	})
	s.NoError(err)

	params := ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		RBAC:           s.GetRBAC(),
		CustomerRepo:   s.GetStores().CustomerRepo,
		CatalogRepo:    s.GetStores().CatalogRepo,
		BenefitRepo:    s.GetStores().BenefitRepo,
		CheckoutRepo:   &blindFirstLookupRepo{Repository: s.GetStores().CheckoutRepo},
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		IdempotencyGen: idempotency.NewGenerator(),
	}
	racer := NewCheckoutService(params)

	// the loser's create hits the uniqueness conflict and resolves to the
	// winner instead of erroring or minting a second session
	resolved, err := racer.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID:      "branch_test",
		AppointmentID: &appointmentID,
	})
	s.NoError(err)
	s.Equal(winner.ID, resolved.ID)
}

func (s *CheckoutServiceSuite) TestStartCheckout_MissingBranch() {
	_, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CheckoutServiceSuite) TestAddItem_ComputesTotals() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	s.Len(sess.LineItems, 1)
	s.True(sess.Totals.Subtotal.Equal(decimal.NewFromInt(1000)))
	s.True(sess.Totals.CGSTAmount.Equal(decimal.NewFromInt(90)))
	s.True(sess.Totals.SGSTAmount.Equal(decimal.NewFromInt(90)))
	s.True(sess.Totals.GrandTotal.Equal(decimal.NewFromInt(1180)))
}

func (s *CheckoutServiceSuite) TestAddItem_InterState() {
	sess, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID: "branch_test",
		IsIGST:   true,
	})
	s.NoError(err)
	sess = s.addHaircut(sess.ID)

	s.True(sess.Totals.IGSTAmount.Equal(decimal.NewFromInt(180)))
	s.True(sess.Totals.CGSTAmount.IsZero())
	s.True(sess.Totals.SGSTAmount.IsZero())
}

func (s *CheckoutServiceSuite) TestAddItem_InvalidQuantity() {
	sess := s.startSession()
	_, err := s.service.AddItem(s.GetContext(), sess.ID, dto.AddItemRequest{
		CatalogItemID: s.testHaircut.ID,
		Quantity:      0,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CheckoutServiceSuite) TestUpdateItem_QuantityRecomputesTotals() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)
	s.True(sess.Totals.GrandTotal.Equal(decimal.NewFromInt(1180)))

	sess, err := s.service.UpdateItem(s.GetContext(), sess.ID, sess.LineItems[0].ID, dto.UpdateItemRequest{
		Quantity: lo.ToPtr(2),
	})
	s.NoError(err)

	// gross, tax and grand total all follow the new quantity
	li := sess.LineItems[0]
	s.True(li.GrossAmount.Equal(decimal.NewFromInt(2000)))
	s.True(li.Tax.TotalTax.Equal(decimal.NewFromInt(360)))
	s.True(sess.Totals.Subtotal.Equal(decimal.NewFromInt(2000)))
	s.True(sess.Totals.GrandTotal.Equal(decimal.NewFromInt(2360)))
	s.True(sess.Totals.AmountDue.Equal(decimal.NewFromInt(2360)))
}

func (s *CheckoutServiceSuite) TestUpdateItem_ZeroQuantityRejected() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.UpdateItem(s.GetContext(), sess.ID, sess.LineItems[0].ID, dto.UpdateItemRequest{
		Quantity: lo.ToPtr(0),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CheckoutServiceSuite) TestUpdateItem_UnknownItem() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.UpdateItem(s.GetContext(), sess.ID, "item_missing", dto.UpdateItemRequest{
		Quantity: lo.ToPtr(2),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CheckoutServiceSuite) TestRemoveItem_DropsItsDiscounts() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)
	itemID := sess.LineItems[0].ID

	reason := "regular client"
	sess, err := s.service.ApplyDiscount(s.GetContext(), sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeManual,
		Calculation:  types.CalculationTypeFlat,
		Value:        decimal.NewFromInt(100),
		AppliedTo:    types.DiscountTargetItem,
		ItemID:       &itemID,
		Reason:       &reason,
	})
	s.NoError(err)
	s.Len(sess.AppliedDiscounts, 1)

	sess, err = s.service.RemoveItem(s.GetContext(), sess.ID, itemID)
	s.NoError(err)
	s.Empty(sess.LineItems)
	s.Empty(sess.AppliedDiscounts)
	s.True(sess.Totals.GrandTotal.IsZero())
}

func (s *CheckoutServiceSuite) TestApplyDiscount_ManualRequiresReason() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.ApplyDiscount(s.GetContext(), sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeManual,
		Calculation:  types.CalculationTypeFlat,
		Value:        decimal.NewFromInt(100),
		AppliedTo:    types.DiscountTargetSubtotal,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CheckoutServiceSuite) TestApplyDiscount_LoyaltyTypeRejected() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.ApplyDiscount(s.GetContext(), sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeLoyalty,
		Calculation:  types.CalculationTypeFlat,
		Value:        decimal.NewFromInt(50),
		AppliedTo:    types.DiscountTargetSubtotal,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CheckoutServiceSuite) TestApplyDiscount_FromBenefit() {
	ctx := s.GetContext()
	b := &benefit.Benefit{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BENEFIT),
		CustomerID:  s.testCustomer.ID,
		BenefitType: types.BenefitTypeMembership,
		Name:        "Gold Membership",
		Calculation: types.CalculationTypePercentage,
		Value:       decimal.NewFromInt(10),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BenefitRepo.Create(ctx, b))

	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	sess, err := s.service.ApplyDiscount(ctx, sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeMembership,
		SourceID:     b.ID,
		AppliedTo:    types.DiscountTargetSubtotal,
	})
	s.NoError(err)
	s.Len(sess.AppliedDiscounts, 1)
	s.True(sess.AppliedDiscounts[0].Amount.Equal(decimal.NewFromInt(100)))
	s.True(sess.Totals.TaxableAmount.Equal(decimal.NewFromInt(900)))

	// same benefit cannot stack
	_, err = s.service.ApplyDiscount(ctx, sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeMembership,
		SourceID:     b.ID,
		AppliedTo:    types.DiscountTargetSubtotal,
	})
	s.Error(err)
	s.True(ierr.IsBusinessRule(err))
}

func (s *CheckoutServiceSuite) TestApplyDiscount_ExpiredBenefit() {
	ctx := s.GetContext()
	expired := time.Now().UTC().Add(-24 * time.Hour)
	b := &benefit.Benefit{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BENEFIT),
		CustomerID:  s.testCustomer.ID,
		BenefitType: types.BenefitTypeCoupon,
		Name:        "Monsoon Offer",
		Calculation: types.CalculationTypeFlat,
		Value:       decimal.NewFromInt(200),
		ExpiresAt:   &expired,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BenefitRepo.Create(ctx, b))

	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.ApplyDiscount(ctx, sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeCoupon,
		SourceID:     b.ID,
		AppliedTo:    types.DiscountTargetSubtotal,
	})
	s.Error(err)
	s.True(ierr.IsBusinessRule(err))
}

func (s *CheckoutServiceSuite) TestSplitPayments_SettleSession() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)
	// bring the bill to 1180

	sess, err := s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{{
			PaymentMethod: types.PaymentMethodCash,
			Amount:        decimal.NewFromInt(700),
		}},
	})
	s.NoError(err)
	s.Equal(types.SessionStatusOpen, sess.SessionStatus)
	s.True(sess.Totals.AmountDue.Equal(decimal.NewFromInt(480)))

	sess, err = s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{{
			PaymentMethod: types.PaymentMethodUPI,
			Amount:        decimal.NewFromInt(480),
			UPIID:         lo.ToPtr("priya@upi"),
		}},
	})
	s.NoError(err)
	s.Equal(types.SessionStatusSettled, sess.SessionStatus)
	s.True(sess.Totals.AmountDue.IsZero())
	s.Len(sess.Payments, 2)
}

func (s *CheckoutServiceSuite) TestProcessPayment_SplitBatchLandsAtomically() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	// a card/cash split for the full 1180 arrives as one request
	sess, err := s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{
			{
				PaymentMethod: types.PaymentMethodCard,
				Amount:        decimal.NewFromInt(1000),
				CardLastFour:  lo.ToPtr("4242"),
			},
			{
				PaymentMethod: types.PaymentMethodCash,
				Amount:        decimal.NewFromInt(180),
			},
		},
	})
	s.NoError(err)
	s.Len(sess.Payments, 2)
	s.Equal(types.SessionStatusSettled, sess.SessionStatus)
	s.True(sess.Totals.AmountPaid.Equal(decimal.NewFromInt(1180)))
}

func (s *CheckoutServiceSuite) TestProcessPayment_OverpayingBatchRecordsNothing() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	// the second instrument tips the batch over the amount due, so neither lands
	_, err := s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{
			{
				PaymentMethod: types.PaymentMethodCash,
				Amount:        decimal.NewFromInt(1000),
			},
			{
				PaymentMethod: types.PaymentMethodUPI,
				Amount:        decimal.NewFromInt(500),
				UPIID:         lo.ToPtr("priya@upi"),
			},
		},
	})
	s.Error(err)
	s.True(ierr.IsBusinessRule(err))

	sess, err = s.service.GetSession(s.GetContext(), sess.ID)
	s.NoError(err)
	s.Empty(sess.Payments)
	s.True(sess.Totals.AmountPaid.IsZero())
}

func (s *CheckoutServiceSuite) TestProcessPayment_EmptyBatchRejected() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CheckoutServiceSuite) TestProcessPayment_OverpaymentRejected() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{{
			PaymentMethod: types.PaymentMethodCash,
			Amount:        decimal.NewFromInt(2000),
		}},
	})
	s.Error(err)
	s.True(ierr.IsBusinessRule(err))
}

func (s *CheckoutServiceSuite) TestRemovePayment_ReopensSession() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	sess, err := s.service.ProcessPayment(s.GetContext(), sess.ID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{{
			PaymentMethod: types.PaymentMethodCard,
			Amount:        decimal.NewFromInt(1180),
			CardLastFour:  lo.ToPtr("4242"),
		}},
	})
	s.NoError(err)
	s.Equal(types.SessionStatusSettled, sess.SessionStatus)

	sess, err = s.service.RemovePayment(s.GetContext(), sess.ID, sess.Payments[0].ID)
	s.NoError(err)
	s.Equal(types.SessionStatusOpen, sess.SessionStatus)
	s.True(sess.Totals.AmountDue.Equal(decimal.NewFromInt(1180)))
}

func (s *CheckoutServiceSuite) TestApplyCredit_WalletCappedAtBalance() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	// wallet holds 300; asking for more only uses what exists
	sess, err := s.service.ApplyCredit(s.GetContext(), sess.ID, dto.CreditRequest{
		CreditType: types.CreditTypeWallet,
		Amount:     decimal.NewFromInt(1000),
	})
	s.NoError(err)
	s.True(sess.WalletUsed.Equal(decimal.NewFromInt(300)))
	s.True(sess.Totals.GrandTotal.Equal(decimal.NewFromInt(880)))
}

func (s *CheckoutServiceSuite) TestApplyCredit_LoyaltyCappedAtValue() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	// 200 points at 0.50 each give 100 of value
	sess, err := s.service.ApplyCredit(s.GetContext(), sess.ID, dto.CreditRequest{
		CreditType: types.CreditTypeLoyalty,
		Amount:     decimal.NewFromInt(500),
	})
	s.NoError(err)
	s.True(sess.LoyaltyDiscount.Equal(decimal.NewFromInt(100)))
	s.True(sess.Totals.GrandTotal.Equal(decimal.NewFromInt(1080)))
}

func (s *CheckoutServiceSuite) TestApplyCredit_RequiresCustomer() {
	sess, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID: "branch_test",
	})
	s.NoError(err)
	sess = s.addHaircut(sess.ID)

	_, err = s.service.ApplyCredit(s.GetContext(), sess.ID, dto.CreditRequest{
		CreditType: types.CreditTypeWallet,
		Amount:     decimal.NewFromInt(100),
	})
	s.Error(err)
	s.True(ierr.IsBusinessRule(err))
}

func (s *CheckoutServiceSuite) TestSetTip() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	sess, err := s.service.SetTip(s.GetContext(), sess.ID, decimal.NewFromInt(100))
	s.NoError(err)
	s.True(sess.Totals.GrandTotal.Equal(decimal.NewFromInt(1280)))
	// tip never attracts tax
	s.True(sess.Totals.TaxTotal.Equal(decimal.NewFromInt(180)))
}

func (s *CheckoutServiceSuite) settleAndComplete(sessionID string) *checkout.Session {
	sess, err := s.service.GetSession(s.GetContext(), sessionID)
	s.NoError(err)
	sess, err = s.service.ProcessPayment(s.GetContext(), sessionID, dto.PaymentRequest{
		Payments: []dto.PaymentEntryRequest{{
			PaymentMethod: types.PaymentMethodCash,
			Amount:        sess.Totals.AmountDue,
		}},
	})
	s.NoError(err)
	s.Equal(types.SessionStatusSettled, sess.SessionStatus)
	return sess
}

func (s *CheckoutServiceSuite) TestCompleteCheckout() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)
	s.settleAndComplete(sess.ID)

	inv, err := s.service.CompleteCheckout(s.GetContext(), sess.ID, dto.CompleteCheckoutRequest{
		ReceiptMethod: types.ReceiptMethodSMS,
	})
	s.NoError(err)
	s.Require().NotNil(inv)
	s.NotEmpty(inv.InvoiceNumber)
	s.Equal(sess.ID, inv.SessionID)
	s.Len(inv.LineItems, 1)
	s.True(inv.Totals.GrandTotal.Equal(decimal.NewFromInt(1180)))

	final, err := s.service.GetSession(s.GetContext(), sess.ID)
	s.NoError(err)
	s.Equal(types.SessionStatusCompleted, final.SessionStatus)
	s.Require().NotNil(final.InvoiceID)
	s.Equal(inv.ID, *final.InvoiceID)
}

func (s *CheckoutServiceSuite) TestCompleteCheckout_Idempotent() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)
	s.settleAndComplete(sess.ID)

	first, err := s.service.CompleteCheckout(s.GetContext(), sess.ID, dto.CompleteCheckoutRequest{})
	s.NoError(err)

	second, err := s.service.CompleteCheckout(s.GetContext(), sess.ID, dto.CompleteCheckoutRequest{})
	s.NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.InvoiceNumber, second.InvoiceNumber)
}

func (s *CheckoutServiceSuite) TestCompleteCheckout_UnsettledRejected() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	_, err := s.service.CompleteCheckout(s.GetContext(), sess.ID, dto.CompleteCheckoutRequest{})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *CheckoutServiceSuite) TestCompleteCheckout_DebitsCustomerBalances() {
	ctx := s.GetContext()
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	sess, err := s.service.ApplyCredit(ctx, sess.ID, dto.CreditRequest{
		CreditType: types.CreditTypeWallet,
		Amount:     decimal.NewFromInt(300),
	})
	s.NoError(err)
	sess, err = s.service.ApplyCredit(ctx, sess.ID, dto.CreditRequest{
		CreditType: types.CreditTypeLoyalty,
		Amount:     decimal.NewFromInt(100),
	})
	s.NoError(err)
	// 1180 - 300 - 100 = 780 still due
	s.True(sess.Totals.AmountDue.Equal(decimal.NewFromInt(780)))

	s.settleAndComplete(sess.ID)
	_, err = s.service.CompleteCheckout(ctx, sess.ID, dto.CompleteCheckoutRequest{})
	s.NoError(err)

	cust, err := s.GetStores().CustomerRepo.Get(ctx, s.testCustomer.ID)
	s.NoError(err)
	s.True(cust.WalletBalance.IsZero())
	// 100 of loyalty value at 0.50 per point burns 200 points
	s.True(cust.LoyaltyPoints.IsZero())
}

func (s *CheckoutServiceSuite) TestCompleteCheckout_IncrementsBenefitRedemptions() {
	ctx := s.GetContext()
	credits := 5
	b := &benefit.Benefit{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BENEFIT),
		CustomerID:       s.testCustomer.ID,
		BenefitType:      types.BenefitTypePackage,
		Name:             "Grooming Package",
		Calculation:      types.CalculationTypePercentage,
		Value:            decimal.NewFromInt(100),
		RemainingCredits: &credits,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BenefitRepo.Create(ctx, b))

	sess := s.startSession()
	sess = s.addHaircut(sess.ID)
	sess, err := s.service.ApplyDiscount(ctx, sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypePackage,
		SourceID:     b.ID,
		AppliedTo:    types.DiscountTargetSubtotal,
	})
	s.NoError(err)
	// fully covered by the package, settles with no payment once free
	s.True(sess.Totals.GrandTotal.IsZero())
	s.Equal(types.SessionStatusSettled, sess.SessionStatus)

	_, err = s.service.CompleteCheckout(ctx, sess.ID, dto.CompleteCheckoutRequest{})
	s.NoError(err)

	updated, err := s.GetStores().BenefitRepo.Get(ctx, b.ID)
	s.NoError(err)
	s.Equal(1, updated.TotalRedemptions)
	s.Equal(4, *updated.RemainingCredits)
}

func (s *CheckoutServiceSuite) TestExpiry_LazyOnRead() {
	sess := s.startSession()
	sess = s.addHaircut(sess.ID)

	store := s.GetStores().CheckoutRepo.(*testutil.InMemoryCheckoutStore)
	s.NoError(store.ForceExpire(s.GetContext(), sess.ID))

	got, err := s.service.GetSession(s.GetContext(), sess.ID)
	s.NoError(err)
	s.Equal(types.SessionStatusExpired, got.SessionStatus)

	// expired sessions reject every mutation
	_, err = s.service.AddItem(s.GetContext(), sess.ID, dto.AddItemRequest{
		CatalogItemID: s.testShampoo.ID,
		Quantity:      1,
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *CheckoutServiceSuite) TestExpireStale_Sweep() {
	first := s.startSession()
	second, err := s.service.StartCheckout(s.GetContext(), dto.StartCheckoutRequest{
		BranchID: "branch_test",
	})
	s.NoError(err)

	store := s.GetStores().CheckoutRepo.(*testutil.InMemoryCheckoutStore)
	s.NoError(store.ForceExpire(s.GetContext(), first.ID))

	count, err := s.service.ExpireStale(s.GetContext())
	s.NoError(err)
	s.Equal(1, count)

	got, err := s.service.GetSession(s.GetContext(), first.ID)
	s.NoError(err)
	s.Equal(types.SessionStatusExpired, got.SessionStatus)

	untouched, err := s.service.GetSession(s.GetContext(), second.ID)
	s.NoError(err)
	s.Equal(types.SessionStatusOpen, untouched.SessionStatus)
}

func (s *CheckoutServiceSuite) TestRBAC_StylistCannotDiscount() {
	sess := s.startSession()
	s.addHaircut(sess.ID)

	stylistCtx := context.WithValue(s.GetContext(), types.CtxRoles, []string{"stylist"})
	reason := "walked in"
	_, err := s.service.ApplyDiscount(stylistCtx, sess.ID, dto.DiscountRequest{
		DiscountType: types.DiscountTypeManual,
		Calculation:  types.CalculationTypeFlat,
		Value:        decimal.NewFromInt(50),
		AppliedTo:    types.DiscountTargetSubtotal,
		Reason:       &reason,
	})
	s.Error(err)
	s.True(ierr.IsPermission(err))
}

func (s *CheckoutServiceSuite) TestInvoiceService_ListAndGet() {
	sess := s.startSession()
	s.addHaircut(sess.ID)
	s.settleAndComplete(sess.ID)

	inv, err := s.service.CompleteCheckout(s.GetContext(), sess.ID, dto.CompleteCheckoutRequest{})
	s.NoError(err)

	got, err := s.invoices.GetInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(inv.InvoiceNumber, got.InvoiceNumber)

	bySession, err := s.invoices.GetInvoiceBySession(s.GetContext(), sess.ID)
	s.NoError(err)
	s.Equal(inv.ID, bySession.ID)

	list, err := s.invoices.ListInvoices(s.GetContext(), types.NewInvoiceFilter())
	s.NoError(err)
	s.Equal(1, list.Pagination.Total)
	s.Len(list.Items, 1)
}
