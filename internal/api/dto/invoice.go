package dto

import (
	"github.com/salonhq/salonhq/internal/domain/invoice"
	"github.com/salonhq/salonhq/internal/types"
)

// InvoiceResponse is the API shape of an issued invoice.
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse is a paginated list of invoices.
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
