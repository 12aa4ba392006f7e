package testutil

import (
	"context"

	"github.com/salonhq/salonhq/internal/domain/invoice"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	// One invoice per session, ever
	if _, err := s.GetBySession(ctx, inv.SessionID); err == nil {
		return ierr.NewError("invoice already issued for session").
			WithReportableDetails(map[string]any{"session_id": inv.SessionID}).
			Mark(ierr.ErrAlreadyExists)
	}
	if err := s.InMemoryStore.Create(ctx, inv.ID, inv); err != nil {
		return ierr.WithError(err).
			WithHint("Invoice already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice %s was not found", id).
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) GetBySession(ctx context.Context, sessionID string) (*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.SessionID == sessionID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("no invoice for session").
			WithReportableDetails(map[string]any{"session_id": sessionID}).
			Mark(ierr.ErrNotFound)
	}
	return invoices[0], nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.InvoiceIDs) > 0 {
		found := false
		for _, id := range f.InvoiceIDs {
			if inv.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CustomerID != nil && (inv.CustomerID == nil || *inv.CustomerID != *f.CustomerID) {
		return false
	}
	if f.AppointmentID != nil && (inv.AppointmentID == nil || *inv.AppointmentID != *f.AppointmentID) {
		return false
	}
	if f.BranchID != nil && inv.BranchID != *f.BranchID {
		return false
	}
	return true
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, filter, invoiceFilterFn, func(i, j *invoice.Invoice) bool {
		return i.IssuedAt.After(j.IssuedAt)
	})
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)
