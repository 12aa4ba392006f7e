package service

import (
	"context"
	"sync"
	"time"

	"github.com/salonhq/salonhq/internal/api/dto"
	"github.com/salonhq/salonhq/internal/domain/benefit"
	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/domain/invoice"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/idempotency"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// CheckoutService drives the checkout session lifecycle from open through
// settlement to the issued invoice.
type CheckoutService interface {
	StartCheckout(ctx context.Context, req dto.StartCheckoutRequest) (*checkout.Session, error)
	GetSession(ctx context.Context, id string) (*checkout.Session, error)
	AddItem(ctx context.Context, sessionID string, req dto.AddItemRequest) (*checkout.Session, error)
	UpdateItem(ctx context.Context, sessionID, itemID string, req dto.UpdateItemRequest) (*checkout.Session, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (*checkout.Session, error)
	ApplyDiscount(ctx context.Context, sessionID string, req dto.DiscountRequest) (*checkout.Session, error)
	RemoveDiscount(ctx context.Context, sessionID, discountID string) (*checkout.Session, error)
	ApplyCredit(ctx context.Context, sessionID string, req dto.CreditRequest) (*checkout.Session, error)
	SetTip(ctx context.Context, sessionID string, amount decimal.Decimal) (*checkout.Session, error)
	ProcessPayment(ctx context.Context, sessionID string, req dto.PaymentRequest) (*checkout.Session, error)
	RemovePayment(ctx context.Context, sessionID, paymentID string) (*checkout.Session, error)
	CompleteCheckout(ctx context.Context, sessionID string, req dto.CompleteCheckoutRequest) (*invoice.Invoice, error)
	ExpireStale(ctx context.Context) (int, error)
}

type checkoutService struct {
	ServiceParams

	// sessionLocks serializes mutations per session id; the optimistic
	// version column backstops writers on other instances
	sessionLocks sync.Map
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{ServiceParams: params}
}

func (s *checkoutService) lockSession(sessionID string) func() {
	v, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *checkoutService) StartCheckout(ctx context.Context, req dto.StartCheckoutRequest) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "create"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		if _, err := s.CustomerRepo.Get(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	// Starting twice against the same appointment returns the already
	// active session instead of erroring.
	if req.AppointmentID != nil {
		existing, err := s.CheckoutRepo.GetActiveByAppointment(ctx, *req.AppointmentID)
		if err == nil {
			return existing, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	session := &checkout.Session{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SESSION),
		BranchID:      req.BranchID,
		AppointmentID: req.AppointmentID,
		CustomerID:    req.CustomerID,
		SessionStatus: types.SessionStatusOpen,
		IsIGST:        req.IsIGST,
		ExpiresAt:     now.Add(s.Config.Checkout.SessionTTL),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := RecomputeTotals(session); err != nil {
		return nil, err
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.CheckoutRepo.Create(ctx, session)
	})
	if err != nil {
		// Lost the race against a concurrent start for the same appointment;
		// resolve to the winner.
		if ierr.IsConflict(err) && req.AppointmentID != nil {
			return s.CheckoutRepo.GetActiveByAppointment(ctx, *req.AppointmentID)
		}
		return nil, err
	}

	s.Logger.Infow("started checkout session",
		"session_id", session.ID,
		"branch_id", session.BranchID)
	return session, nil
}

func (s *checkoutService) GetSession(ctx context.Context, id string) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "read"); err != nil {
		return nil, err
	}
	session, err := s.CheckoutRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Lazy expiry: an elapsed TTL is observed on read, not only by the sweep
	if session.IsExpired(time.Now().UTC()) {
		unlock := s.lockSession(id)
		defer unlock()
		session, err = s.CheckoutRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if session.IsExpired(time.Now().UTC()) {
			session.SessionStatus = types.SessionStatusExpired
			if err := s.CheckoutRepo.Update(ctx, session); err != nil {
				return nil, err
			}
		}
	}
	return session, nil
}

// mutate runs fn against the locked, loaded session, then recomputes
// totals, refreshes the open/settled state and persists. Every session
// mutation funnels through here.
func (s *checkoutService) mutate(ctx context.Context, sessionID string, fn func(ctx context.Context, sess *checkout.Session) error) (*checkout.Session, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	var out *checkout.Session
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		session, err := s.CheckoutRepo.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if session.IsExpired(now) {
			session.SessionStatus = types.SessionStatusExpired
			if err := s.CheckoutRepo.Update(ctx, session); err != nil {
				return err
			}
			return ierr.NewError("session has expired").
				WithHint("This checkout session expired; start a new one").
				WithReportableDetails(map[string]any{"session_id": sessionID}).
				Mark(ierr.ErrInvalidState)
		}
		if err := session.CanMutate(); err != nil {
			return err
		}
		if err := fn(ctx, session); err != nil {
			return err
		}
		if err := RecomputeTotals(session); err != nil {
			return err
		}
		refreshSettlement(session)
		if err := session.Validate(); err != nil {
			return err
		}
		if err := s.CheckoutRepo.Update(ctx, session); err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// refreshSettlement flips the session between open and settled from the
// recomputed amounts. Settlement is derived, never set directly.
func refreshSettlement(s *checkout.Session) {
	if s.SessionStatus.IsTerminal() {
		return
	}
	if len(s.LineItems) > 0 && IsSettled(s) {
		s.SessionStatus = types.SessionStatusSettled
	} else {
		s.SessionStatus = types.SessionStatusOpen
	}
}

func (s *checkoutService) AddItem(ctx context.Context, sessionID string, req dto.AddItemRequest) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "update"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.CatalogRepo.Get(ctx, req.CatalogItemID)
	if err != nil {
		return nil, err
	}
	variantID := ""
	if req.VariantID != nil {
		variantID = *req.VariantID
	}
	unitPrice, err := item.PriceFor(variantID)
	if err != nil {
		return nil, err
	}
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		sess.LineItems = append(sess.LineItems, &checkout.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
			ItemType:    item.ItemType,
			ReferenceID: item.ID,
			VariantID:   req.VariantID,
			Name:        item.Name,
			UnitPrice:   unitPrice,
			Quantity:    req.Quantity,
			TaxRate:     item.TaxRate,
			StylistID:   req.StylistID,
			AssistantID: req.AssistantID,
		})
		return nil
	})
}

func (s *checkoutService) UpdateItem(ctx context.Context, sessionID, itemID string, req dto.UpdateItemRequest) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "update"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		li := sess.FindItem(itemID)
		if li == nil {
			return itemNotFound(sessionID, itemID)
		}
		if req.Quantity != nil {
			li.Quantity = *req.Quantity
		}
		if req.StylistID != nil {
			li.StylistID = req.StylistID
		}
		if req.AssistantID != nil {
			li.AssistantID = req.AssistantID
		}
		return nil
	})
}

func (s *checkoutService) RemoveItem(ctx context.Context, sessionID, itemID string) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "update"); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		if sess.FindItem(itemID) == nil {
			return itemNotFound(sessionID, itemID)
		}
		items := sess.LineItems[:0]
		for _, li := range sess.LineItems {
			if li.ID != itemID {
				items = append(items, li)
			}
		}
		sess.LineItems = items

		// Discounts targeting the removed item go with it
		discounts := sess.AppliedDiscounts[:0]
		for _, d := range sess.AppliedDiscounts {
			if d.AppliedTo == types.DiscountTargetItem && d.ItemID != nil && *d.ItemID == itemID {
				continue
			}
			discounts = append(discounts, d)
		}
		sess.AppliedDiscounts = discounts
		return nil
	})
}

func (s *checkoutService) ApplyDiscount(ctx context.Context, sessionID string, req dto.DiscountRequest) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "discount"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var source *benefit.Benefit
	if req.SourceID != "" {
		b, err := s.BenefitRepo.Get(ctx, req.SourceID)
		if err != nil {
			return nil, err
		}
		if b.BenefitType.DiscountType() != req.DiscountType {
			return nil, ierr.NewError("discount type does not match the benefit").
				WithHintf("Benefit %s grants a %s discount", b.Name, b.BenefitType.DiscountType()).
				Mark(ierr.ErrValidation)
		}
		// Benefit-sourced discounts inherit the benefit's terms
		req.Calculation = b.Calculation
		req.Value = b.Value
		source = b
	} else if req.DiscountType != types.DiscountTypeManual {
		return nil, ierr.NewError("discount requires a benefit source").
			WithHintf("A %s discount must reference the benefit that grants it", req.DiscountType).
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	applied, err := buildAppliedDiscount(req, source, now)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		if source != nil && source.CustomerID != "" {
			if sess.CustomerID == nil || *sess.CustomerID != source.CustomerID {
				return ierr.NewError("benefit belongs to a different customer").
					WithHint("This benefit is not held by the session's customer").
					WithReportableDetails(map[string]any{
						"benefit_id": source.ID,
						"session_id": sessionID,
					}).
					Mark(ierr.ErrBusinessRule)
			}
		}
		if applied.AppliedTo == types.DiscountTargetItem {
			if sess.FindItem(*applied.ItemID) == nil {
				return itemNotFound(sessionID, *applied.ItemID)
			}
		}
		if source != nil {
			for _, d := range sess.AppliedDiscounts {
				if d.Source == source.ID {
					return ierr.NewError("benefit already applied to this session").
						WithHintf("%s is already applied", source.Name).
						Mark(ierr.ErrBusinessRule)
				}
			}
		}
		sess.AppliedDiscounts = append(sess.AppliedDiscounts, applied)
		return nil
	})
}

func (s *checkoutService) RemoveDiscount(ctx context.Context, sessionID, discountID string) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "discount"); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		if sess.FindDiscount(discountID) == nil {
			return ierr.NewError("discount not found in session").
				WithReportableDetails(map[string]any{
					"session_id":  sessionID,
					"discount_id": discountID,
				}).
				Mark(ierr.ErrNotFound)
		}
		discounts := sess.AppliedDiscounts[:0]
		for _, d := range sess.AppliedDiscounts {
			if d.ID != discountID {
				discounts = append(discounts, d)
			}
		}
		sess.AppliedDiscounts = discounts
		return nil
	})
}

func (s *checkoutService) ApplyCredit(ctx context.Context, sessionID string, req dto.CreditRequest) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "payment"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		if sess.CustomerID == nil {
			return ierr.NewError("session has no customer").
				WithHint("Loyalty and wallet credits need a customer on the session").
				Mark(ierr.ErrBusinessRule)
		}
		cust, err := s.CustomerRepo.Get(ctx, *sess.CustomerID)
		if err != nil {
			return err
		}

		// Cap at the available balance and at what is still owed
		amount := req.Amount
		if amount.GreaterThan(sess.Totals.AmountDue) {
			amount = sess.Totals.AmountDue
		}
		switch req.CreditType {
		case types.CreditTypeLoyalty:
			available := cust.LoyaltyValue().Sub(sess.LoyaltyDiscount)
			if amount.GreaterThan(available) {
				amount = available
			}
			if !amount.IsPositive() {
				return ierr.NewError("no redeemable loyalty balance").
					WithHint("The customer has no loyalty value left to redeem").
					Mark(ierr.ErrBusinessRule)
			}
			sess.LoyaltyDiscount = sess.LoyaltyDiscount.Add(amount)
		case types.CreditTypeWallet:
			available := cust.WalletBalance.Sub(sess.WalletUsed)
			if amount.GreaterThan(available) {
				amount = available
			}
			if !amount.IsPositive() {
				return ierr.NewError("insufficient wallet balance").
					WithHint("The customer's wallet has no balance left to use").
					Mark(ierr.ErrBusinessRule)
			}
			sess.WalletUsed = sess.WalletUsed.Add(amount)
		}
		return nil
	})
}

func (s *checkoutService) SetTip(ctx context.Context, sessionID string, amount decimal.Decimal) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "update"); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, ierr.NewError("tip must be non negative").
			WithHint("Tip amount cannot be negative").
			Mark(ierr.ErrValidation)
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		sess.TipAmount = types.RoundAmount(amount)
		return nil
	})
}

func (s *checkoutService) ProcessPayment(ctx context.Context, sessionID string, req dto.PaymentRequest) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "payment"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]*checkout.PaymentEntry, 0, len(req.Payments))
	batchTotal := decimal.Zero
	for _, p := range req.Payments {
		entry := &checkout.PaymentEntry{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ENTRY),
			PaymentMethod: p.PaymentMethod,
			Amount:        types.RoundAmount(p.Amount),
			CardLastFour:  p.CardLastFour,
			UPIID:         p.UPIID,
			TransactionID: p.TransactionID,
			ReceivedAt:    now,
		}
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		batchTotal = batchTotal.Add(entry.Amount)
	}

	// The batch lands atomically: a split settlement either records every
	// instrument or none of them.
	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		if len(sess.LineItems) == 0 {
			return ierr.NewError("cannot take payment on an empty session").
				WithHint("Add at least one item before recording a payment").
				Mark(ierr.ErrBusinessRule)
		}
		newPaid := sess.Totals.AmountPaid.Add(batchTotal)
		if newPaid.Sub(sess.Totals.GrandTotal).GreaterThan(types.AmountTolerance) {
			return ierr.NewError("payment exceeds amount due").
				WithHintf("Only %s is due on this session", sess.Totals.AmountDue.StringFixed(2)).
				WithReportableDetails(map[string]any{
					"session_id": sessionID,
					"amount_due": sess.Totals.AmountDue,
					"attempted":  batchTotal,
				}).
				Mark(ierr.ErrBusinessRule)
		}
		sess.Payments = append(sess.Payments, entries...)
		return nil
	})
}

func (s *checkoutService) RemovePayment(ctx context.Context, sessionID, paymentID string) (*checkout.Session, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "payment"); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(ctx context.Context, sess *checkout.Session) error {
		found := false
		payments := sess.Payments[:0]
		for _, p := range sess.Payments {
			if p.ID == paymentID {
				found = true
				continue
			}
			payments = append(payments, p)
		}
		if !found {
			return ierr.NewError("payment not found in session").
				WithReportableDetails(map[string]any{
					"session_id": sessionID,
					"payment_id": paymentID,
				}).
				Mark(ierr.ErrNotFound)
		}
		sess.Payments = payments
		return nil
	})
}

func (s *checkoutService) CompleteCheckout(ctx context.Context, sessionID string, req dto.CompleteCheckoutRequest) (*invoice.Invoice, error) {
	if err := s.RBAC.Authorize(ctx, "checkout", "complete"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	receiptMethod := req.ReceiptMethod
	if receiptMethod == "" {
		receiptMethod = types.ReceiptMethodNone
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	var inv *invoice.Invoice
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		session, err := s.CheckoutRepo.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		// Idempotent replay: a completed session resolves to its invoice
		if session.SessionStatus == types.SessionStatusCompleted {
			inv, err = s.InvoiceRepo.GetBySession(ctx, sessionID)
			return err
		}

		now := time.Now().UTC()
		if session.IsExpired(now) {
			session.SessionStatus = types.SessionStatusExpired
			if err := s.CheckoutRepo.Update(ctx, session); err != nil {
				return err
			}
			return ierr.NewError("session has expired").
				WithHint("This checkout session expired; start a new one").
				WithReportableDetails(map[string]any{"session_id": sessionID}).
				Mark(ierr.ErrInvalidState)
		}
		if session.SessionStatus != types.SessionStatusSettled {
			return ierr.NewError("session is not fully paid").
				WithHintf("%s is still due on this session", session.Totals.AmountDue.StringFixed(2)).
				WithReportableDetails(map[string]any{
					"session_id": sessionID,
					"amount_due": session.Totals.AmountDue,
				}).
				Mark(ierr.ErrInvalidState)
		}

		inv, err = s.buildInvoice(session, receiptMethod, now)
		if err != nil {
			return err
		}
		if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
			// Another writer completed first; the existing invoice wins
			if ierr.IsAlreadyExists(err) || ierr.IsConflict(err) {
				inv, err = s.InvoiceRepo.GetBySession(ctx, sessionID)
				return err
			}
			return err
		}

		if err := s.settleCustomerBalances(ctx, session); err != nil {
			return err
		}
		for _, d := range session.AppliedDiscounts {
			if d.Source == "" {
				continue
			}
			if err := s.BenefitRepo.IncrementRedemptions(ctx, d.Source); err != nil {
				return err
			}
		}

		session.SessionStatus = types.SessionStatusCompleted
		session.InvoiceID = &inv.ID
		return s.CheckoutRepo.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("completed checkout session",
		"session_id", sessionID,
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber)
	return inv, nil
}

// buildInvoice snapshots the session into an immutable invoice.
func (s *checkoutService) buildInvoice(sess *checkout.Session, receiptMethod types.ReceiptMethod, now time.Time) (*invoice.Invoice, error) {
	lineItems := make([]*checkout.LineItem, len(sess.LineItems))
	for i, li := range sess.LineItems {
		cp := *li
		lineItems[i] = &cp
	}
	discounts := make([]*checkout.AppliedDiscount, len(sess.AppliedDiscounts))
	for i, d := range sess.AppliedDiscounts {
		cp := *d
		discounts[i] = &cp
	}
	payments := make([]*checkout.PaymentEntry, len(sess.Payments))
	for i, p := range sess.Payments {
		cp := *p
		payments[i] = &cp
	}

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		SessionID:     sess.ID,
		BranchID:      sess.BranchID,
		AppointmentID: sess.AppointmentID,
		CustomerID:    sess.CustomerID,
		IsIGST:        sess.IsIGST,

		LineItems:        lineItems,
		AppliedDiscounts: discounts,
		Payments:         payments,
		Totals:           sess.Totals,

		IdempotencyKey: s.IdempotencyGen.GenerateKey(idempotency.ScopeCheckoutInvoice, map[string]interface{}{
			"session_id": sess.ID,
		}),
		ReceiptMethod: receiptMethod,
		IssuedAt:      now,
		BaseModel:     sess.BaseModel,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// settleCustomerBalances debits the loyalty points and wallet balance the
// session consumed.
func (s *checkoutService) settleCustomerBalances(ctx context.Context, sess *checkout.Session) error {
	if sess.LoyaltyDiscount.IsZero() && sess.WalletUsed.IsZero() {
		return nil
	}
	if sess.CustomerID == nil {
		return ierr.NewError("credits applied without a customer").
			Mark(ierr.ErrInvalidState)
	}
	cust, err := s.CustomerRepo.Get(ctx, *sess.CustomerID)
	if err != nil {
		return err
	}
	points := decimal.Zero
	if sess.LoyaltyDiscount.IsPositive() {
		if !cust.LoyaltyPointValue.IsPositive() {
			return ierr.NewError("loyalty credit with no point value").
				WithReportableDetails(map[string]any{"customer_id": cust.ID}).
				Mark(ierr.ErrInvalidState)
		}
		points = sess.LoyaltyDiscount.Div(cust.LoyaltyPointValue)
	}
	return s.CustomerRepo.DebitBalances(ctx, cust.ID, points, sess.WalletUsed)
}

// ExpireStale marks every non-terminal session whose TTL elapsed as
// expired. It runs from the background sweep; individual failures are
// logged and skipped so one bad row cannot stall the sweep.
func (s *checkoutService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.CheckoutRepo.ListExpirable(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, session := range stale {
		// the sweep runs without a request tenant; scope each update to
		// the session's own tenant
		sessCtx := context.WithValue(ctx, types.CtxTenantID, session.TenantID)
		err := func() error {
			unlock := s.lockSession(session.ID)
			defer unlock()
			current, err := s.CheckoutRepo.Get(sessCtx, session.ID)
			if err != nil {
				return err
			}
			if !current.IsExpired(time.Now().UTC()) {
				return nil
			}
			current.SessionStatus = types.SessionStatusExpired
			return s.CheckoutRepo.Update(sessCtx, current)
		}()
		if err != nil {
			s.Logger.Errorw("failed to expire session", "session_id", session.ID, "error", err)
			continue
		}
		expired++
	}
	if expired > 0 {
		s.Logger.Infow("expired stale checkout sessions", "count", expired)
	}
	return expired, nil
}

func itemNotFound(sessionID, itemID string) error {
	return ierr.NewError("item not found in session").
		WithReportableDetails(map[string]any{
			"session_id": sessionID,
			"item_id":    itemID,
		}).
		Mark(ierr.ErrNotFound)
}
