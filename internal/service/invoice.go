package service

import (
	"context"

	"github.com/salonhq/salonhq/internal/api/dto"
	"github.com/salonhq/salonhq/internal/domain/invoice"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/samber/lo"
)

// InvoiceService exposes read access to issued invoices. Invoices are
// only ever minted by checkout completion.
type InvoiceService interface {
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)
	GetInvoiceBySession(ctx context.Context, sessionID string) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	if err := s.RBAC.Authorize(ctx, "invoice", "read"); err != nil {
		return nil, err
	}
	return s.InvoiceRepo.Get(ctx, id)
}

func (s *invoiceService) GetInvoiceBySession(ctx context.Context, sessionID string) (*invoice.Invoice, error) {
	if err := s.RBAC.Authorize(ctx, "invoice", "read"); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, ierr.NewError("session_id is required").
			WithHint("Session ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.InvoiceRepo.GetBySession(ctx, sessionID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := s.RBAC.Authorize(ctx, "invoice", "list"); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Items: lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
			return dto.NewInvoiceResponse(inv)
		}),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}
