package invoice

import (
	"context"

	"github.com/salonhq/salonhq/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Invoices are write-once; there is deliberately no Update.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetBySession retrieves the invoice issued for a session, if any.
	// Used to resolve idempotent completion.
	GetBySession(ctx context.Context, sessionID string) (*Invoice, error)

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
