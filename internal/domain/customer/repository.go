package customer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for customer persistence operations
type Repository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *Customer) error

	// Get retrieves a customer by ID
	Get(ctx context.Context, id string) (*Customer, error)

	// Update updates an existing customer
	Update(ctx context.Context, customer *Customer) error

	// DebitBalances debits the loyalty points and wallet balance consumed by
	// a completed checkout. Implementations must reject debits that would
	// drive either balance negative.
	DebitBalances(ctx context.Context, id string, loyaltyPoints, walletAmount decimal.Decimal) error
}
