package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/salonhq/salonhq/internal/domain/checkout"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type checkoutRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewCheckoutRepository(client postgres.IClient, log *logger.Logger) checkout.Repository {
	return &checkoutRepository{client: client, log: log}
}

// checkoutSessionRow is the persistence shape of a checkout session. The
// line items, discounts, payments and totals are stored as jsonb; they are
// only ever read and written as a whole alongside the session row.
type checkoutSessionRow struct {
	ID            string  `gorm:"column:id;primaryKey"`
	BranchID      string  `gorm:"column:branch_id;index"`
	AppointmentID *string `gorm:"column:appointment_id;index"`
	CustomerID    *string `gorm:"column:customer_id;index"`
	SessionStatus string  `gorm:"column:session_status;index"`
	IsIGST        bool    `gorm:"column:is_igst"`

	LineItems        []*checkout.LineItem        `gorm:"column:line_items;type:jsonb;serializer:json"`
	AppliedDiscounts []*checkout.AppliedDiscount `gorm:"column:applied_discounts;type:jsonb;serializer:json"`
	Payments         []*checkout.PaymentEntry    `gorm:"column:payments;type:jsonb;serializer:json"`

	LoyaltyDiscount decimal.Decimal `gorm:"column:loyalty_discount;type:numeric(12,2)"`
	WalletUsed      decimal.Decimal `gorm:"column:wallet_used;type:numeric(12,2)"`
	TipAmount       decimal.Decimal `gorm:"column:tip_amount;type:numeric(12,2)"`

	Totals checkout.Totals `gorm:"column:totals;type:jsonb;serializer:json"`

	InvoiceID *string   `gorm:"column:invoice_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	Version   int       `gorm:"column:version"`

	TenantID  string    `gorm:"column:tenant_id;index"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

func (checkoutSessionRow) TableName() string {
	return "checkout_sessions"
}

func toSessionRow(s *checkout.Session) *checkoutSessionRow {
	return &checkoutSessionRow{
		ID:               s.ID,
		BranchID:         s.BranchID,
		AppointmentID:    s.AppointmentID,
		CustomerID:       s.CustomerID,
		SessionStatus:    s.SessionStatus.String(),
		IsIGST:           s.IsIGST,
		LineItems:        s.LineItems,
		AppliedDiscounts: s.AppliedDiscounts,
		Payments:         s.Payments,
		LoyaltyDiscount:  s.LoyaltyDiscount,
		WalletUsed:       s.WalletUsed,
		TipAmount:        s.TipAmount,
		Totals:           s.Totals,
		InvoiceID:        s.InvoiceID,
		ExpiresAt:        s.ExpiresAt,
		Version:          s.Version,
		TenantID:         s.TenantID,
		Status:           s.Status.String(),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		CreatedBy:        s.CreatedBy,
		UpdatedBy:        s.UpdatedBy,
	}
}

func (r *checkoutSessionRow) toDomain() *checkout.Session {
	return &checkout.Session{
		ID:               r.ID,
		BranchID:         r.BranchID,
		AppointmentID:    r.AppointmentID,
		CustomerID:       r.CustomerID,
		SessionStatus:    types.SessionStatus(r.SessionStatus),
		IsIGST:           r.IsIGST,
		LineItems:        r.LineItems,
		AppliedDiscounts: r.AppliedDiscounts,
		Payments:         r.Payments,
		LoyaltyDiscount:  r.LoyaltyDiscount,
		WalletUsed:       r.WalletUsed,
		TipAmount:        r.TipAmount,
		Totals:           r.Totals,
		InvoiceID:        r.InvoiceID,
		ExpiresAt:        r.ExpiresAt,
		Version:          r.Version,
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

func (r *checkoutRepository) Create(ctx context.Context, session *checkout.Session) error {
	db := r.client.Querier(ctx)

	// One active session per appointment: check first, but still map the
	// unique index violation so concurrent creates cannot both win.
	if session.AppointmentID != nil {
		var count int64
		err := db.Model(&checkoutSessionRow{}).
			Where("tenant_id = ? AND appointment_id = ? AND session_status IN ?",
				types.GetTenantID(ctx), *session.AppointmentID,
				[]string{types.SessionStatusOpen.String(), types.SessionStatusSettled.String()}).
			Count(&count).Error
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to check for an active checkout session").
				Mark(ierr.ErrDatabase)
		}
		if count > 0 {
			return ierr.NewError("an active checkout session already exists for this appointment").
				WithHint("Resume the existing checkout session for this appointment").
				WithReportableDetails(map[string]any{
					"appointment_id": *session.AppointmentID,
				}).
				Mark(ierr.ErrConflict)
		}
	}

	if err := db.Create(toSessionRow(session)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("An active checkout session already exists for this appointment").
				Mark(ierr.ErrConflict)
		}
		return ierr.WithError(err).
			WithHint("Failed to create checkout session").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *checkoutRepository) Get(ctx context.Context, id string) (*checkout.Session, error) {
	db := r.client.Querier(ctx)

	var row checkoutSessionRow
	err := db.Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("checkout session not found").
				WithHintf("Checkout session %s does not exist", id).
				WithReportableDetails(map[string]any{"session_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get checkout session").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *checkoutRepository) GetActiveByAppointment(ctx context.Context, appointmentID string) (*checkout.Session, error) {
	db := r.client.Querier(ctx)

	var row checkoutSessionRow
	err := db.Where("tenant_id = ? AND appointment_id = ? AND session_status IN ?",
		types.GetTenantID(ctx), appointmentID,
		[]string{types.SessionStatusOpen.String(), types.SessionStatusSettled.String()}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("no active checkout session for appointment").
				WithReportableDetails(map[string]any{"appointment_id": appointmentID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get checkout session for appointment").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *checkoutRepository) Update(ctx context.Context, session *checkout.Session) error {
	db := r.client.Querier(ctx)

	row := toSessionRow(session)
	row.Version = session.Version + 1
	row.UpdatedAt = time.Now().UTC()
	row.UpdatedBy = types.GetUserID(ctx)

	res := db.Model(&checkoutSessionRow{}).
		Where("id = ? AND tenant_id = ? AND version = ?",
			session.ID, types.GetTenantID(ctx), session.Version).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(row)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update checkout session").
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return ierr.NewError("checkout session was modified concurrently").
			WithHint("The checkout session changed; retry with the latest state").
			WithReportableDetails(map[string]any{
				"session_id": session.ID,
				"version":    session.Version,
			}).
			Mark(ierr.ErrConflict)
	}

	session.Version = row.Version
	session.UpdatedAt = row.UpdatedAt
	session.UpdatedBy = row.UpdatedBy
	return nil
}

// ListExpirable is deliberately not tenant scoped: the background sweep
// runs once per instance and covers every tenant's stale sessions.
func (r *checkoutRepository) ListExpirable(ctx context.Context, before time.Time) ([]*checkout.Session, error) {
	db := r.client.Querier(ctx)

	var rows []*checkoutSessionRow
	err := db.Where("session_status IN ? AND expires_at < ?",
		[]string{types.SessionStatusOpen.String(), types.SessionStatusSettled.String()},
		before).
		Order("expires_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expirable checkout sessions").
			Mark(ierr.ErrDatabase)
	}

	sessions := make([]*checkout.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}
