package testutil

import (
	"context"

	"github.com/salonhq/salonhq/internal/domain/customer"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/shopspring/decimal"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	if c == nil {
		return ierr.NewError("customer cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, c.ID, c); err != nil {
		return ierr.WithError(err).
			WithHint("Customer already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("customer not found").
			WithHintf("Customer %s was not found", id).
			WithReportableDetails(map[string]any{"customer_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryCustomerStore) Update(ctx context.Context, c *customer.Customer) error {
	if err := s.InMemoryStore.Update(ctx, c.ID, c); err != nil {
		return ierr.WithError(err).
			WithReportableDetails(map[string]any{"customer_id": c.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryCustomerStore) DebitBalances(ctx context.Context, id string, loyaltyPoints, walletAmount decimal.Decimal) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	newPoints := c.LoyaltyPoints.Sub(loyaltyPoints)
	newWallet := c.WalletBalance.Sub(walletAmount)
	if newPoints.IsNegative() || newWallet.IsNegative() {
		return ierr.NewError("insufficient balance for debit").
			WithReportableDetails(map[string]any{
				"customer_id":    id,
				"loyalty_points": loyaltyPoints,
				"wallet_amount":  walletAmount,
			}).
			Mark(ierr.ErrBusinessRule)
	}
	c.LoyaltyPoints = newPoints
	c.WalletBalance = newWallet
	return s.InMemoryStore.Update(ctx, id, c)
}

var _ customer.Repository = (*InMemoryCustomerStore)(nil)
