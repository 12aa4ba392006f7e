package benefit

import "context"

// Repository defines the interface for benefit data access
type Repository interface {
	// Create creates a new benefit
	Create(ctx context.Context, benefit *Benefit) error

	// Get retrieves a benefit by ID
	Get(ctx context.Context, id string) (*Benefit, error)

	// Update updates an existing benefit
	Update(ctx context.Context, benefit *Benefit) error

	// ListByCustomer retrieves all benefits held by a customer
	ListByCustomer(ctx context.Context, customerID string) ([]*Benefit, error)

	// IncrementRedemptions records one redemption against a benefit,
	// decrementing package credits where applicable
	IncrementRedemptions(ctx context.Context, id string) error
}
