package catalog

import "context"

// Repository defines the interface for catalog read operations.
// Catalog writes belong to the catalog management collaborator; checkout
// only resolves prices and tax rates.
type Repository interface {
	// Get retrieves a catalog item by ID
	Get(ctx context.Context, id string) (*Item, error)

	// Create creates a new catalog item
	Create(ctx context.Context, item *Item) error
}
