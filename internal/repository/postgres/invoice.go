package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/domain/invoice"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/types"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewInvoiceRepository(client postgres.IClient, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{client: client, log: log}
}

// invoiceRow is the persistence shape of an invoice. Invoices are
// write-once snapshots so the nested collections live in jsonb columns;
// session_id carries a unique index to make completion idempotent at the
// database as well.
type invoiceRow struct {
	ID            string  `gorm:"column:id;primaryKey"`
	InvoiceNumber string  `gorm:"column:invoice_number;index"`
	SessionID     string  `gorm:"column:session_id;uniqueIndex"`
	BranchID      string  `gorm:"column:branch_id;index"`
	AppointmentID *string `gorm:"column:appointment_id;index"`
	CustomerID    *string `gorm:"column:customer_id;index"`
	IsIGST        bool    `gorm:"column:is_igst"`

	LineItems        []*checkout.LineItem        `gorm:"column:line_items;type:jsonb;serializer:json"`
	AppliedDiscounts []*checkout.AppliedDiscount `gorm:"column:applied_discounts;type:jsonb;serializer:json"`
	Payments         []*checkout.PaymentEntry    `gorm:"column:payments;type:jsonb;serializer:json"`
	Totals           checkout.Totals             `gorm:"column:totals;type:jsonb;serializer:json"`

	IdempotencyKey string    `gorm:"column:idempotency_key;index"`
	ReceiptMethod  string    `gorm:"column:receipt_method"`
	IssuedAt       time.Time `gorm:"column:issued_at;index"`

	TenantID  string    `gorm:"column:tenant_id;index"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

func (invoiceRow) TableName() string {
	return "invoices"
}

func toInvoiceRow(inv *invoice.Invoice) *invoiceRow {
	return &invoiceRow{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		SessionID:        inv.SessionID,
		BranchID:         inv.BranchID,
		AppointmentID:    inv.AppointmentID,
		CustomerID:       inv.CustomerID,
		IsIGST:           inv.IsIGST,
		LineItems:        inv.LineItems,
		AppliedDiscounts: inv.AppliedDiscounts,
		Payments:         inv.Payments,
		Totals:           inv.Totals,
		IdempotencyKey:   inv.IdempotencyKey,
		ReceiptMethod:    inv.ReceiptMethod.String(),
		IssuedAt:         inv.IssuedAt,
		TenantID:         inv.TenantID,
		Status:           inv.Status.String(),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		CreatedBy:        inv.CreatedBy,
		UpdatedBy:        inv.UpdatedBy,
	}
}

func (r *invoiceRow) toDomain() *invoice.Invoice {
	return &invoice.Invoice{
		ID:               r.ID,
		InvoiceNumber:    r.InvoiceNumber,
		SessionID:        r.SessionID,
		BranchID:         r.BranchID,
		AppointmentID:    r.AppointmentID,
		CustomerID:       r.CustomerID,
		IsIGST:           r.IsIGST,
		LineItems:        r.LineItems,
		AppliedDiscounts: r.AppliedDiscounts,
		Payments:         r.Payments,
		Totals:           r.Totals,
		IdempotencyKey:   r.IdempotencyKey,
		ReceiptMethod:    types.ReceiptMethod(r.ReceiptMethod),
		IssuedAt:         r.IssuedAt,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	db := r.client.Querier(ctx)

	if err := db.Create(toInvoiceRow(inv)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("An invoice has already been issued for this session").
				WithReportableDetails(map[string]any{"session_id": inv.SessionID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	db := r.client.Querier(ctx)

	var row invoiceRow
	err := db.Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("invoice not found").
				WithHintf("Invoice %s does not exist", id).
				WithReportableDetails(map[string]any{"invoice_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *invoiceRepository) GetBySession(ctx context.Context, sessionID string) (*invoice.Invoice, error) {
	db := r.client.Querier(ctx)

	var row invoiceRow
	err := db.Where("session_id = ? AND tenant_id = ?", sessionID, types.GetTenantID(ctx)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("no invoice for session").
				WithReportableDetails(map[string]any{"session_id": sessionID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice for session").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	db := r.applyFilter(ctx, filter)

	var rows []*invoiceRow
	err := db.Order("issued_at desc").
		Limit(filter.GetLimit()).
		Offset(filter.GetOffset()).
		Find(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, row.toDomain())
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	var count int64
	err := r.applyFilter(ctx, filter).Model(&invoiceRow{}).Count(&count).Error
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return int(count), nil
}

func (r *invoiceRepository) applyFilter(ctx context.Context, filter *types.InvoiceFilter) *gorm.DB {
	db := r.client.Querier(ctx).
		Where("tenant_id = ?", types.GetTenantID(ctx))

	if filter == nil {
		return db
	}
	if len(filter.InvoiceIDs) > 0 {
		db = db.Where("id IN ?", filter.InvoiceIDs)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.AppointmentID != nil {
		db = db.Where("appointment_id = ?", *filter.AppointmentID)
	}
	if filter.BranchID != nil {
		db = db.Where("branch_id = ?", *filter.BranchID)
	}
	return db
}
