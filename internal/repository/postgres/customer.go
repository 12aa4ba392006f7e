package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/salonhq/salonhq/internal/domain/customer"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewCustomerRepository(client postgres.IClient, log *logger.Logger) customer.Repository {
	return &customerRepository{client: client, log: log}
}

type customerRow struct {
	ID                string          `gorm:"column:id;primaryKey"`
	Name              string          `gorm:"column:name"`
	Phone             string          `gorm:"column:phone;index"`
	Email             string          `gorm:"column:email;index"`
	GSTStateCode      string          `gorm:"column:gst_state_code"`
	LoyaltyPoints     decimal.Decimal `gorm:"column:loyalty_points;type:numeric(12,2)"`
	LoyaltyPointValue decimal.Decimal `gorm:"column:loyalty_point_value;type:numeric(12,4)"`
	WalletBalance     decimal.Decimal `gorm:"column:wallet_balance;type:numeric(12,2)"`

	TenantID  string    `gorm:"column:tenant_id;index"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

func (customerRow) TableName() string {
	return "customers"
}

func toCustomerRow(c *customer.Customer) *customerRow {
	return &customerRow{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Email:             c.Email,
		GSTStateCode:      c.GSTStateCode,
		LoyaltyPoints:     c.LoyaltyPoints,
		LoyaltyPointValue: c.LoyaltyPointValue,
		WalletBalance:     c.WalletBalance,
		TenantID:          c.TenantID,
		Status:            c.Status.String(),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		CreatedBy:         c.CreatedBy,
		UpdatedBy:         c.UpdatedBy,
	}
}

func (r *customerRow) toDomain() *customer.Customer {
	return &customer.Customer{
		ID:                r.ID,
		Name:              r.Name,
		Phone:             r.Phone,
		Email:             r.Email,
		GSTStateCode:      r.GSTStateCode,
		LoyaltyPoints:     r.LoyaltyPoints,
		LoyaltyPointValue: r.LoyaltyPointValue,
		WalletBalance:     r.WalletBalance,
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

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	db := r.client.Querier(ctx)

	if err := db.Create(toCustomerRow(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("A customer with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create customer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	db := r.client.Querier(ctx)

	var row customerRow
	err := db.Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("customer not found").
				WithHintf("Customer %s does not exist", id).
				WithReportableDetails(map[string]any{"customer_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	db := r.client.Querier(ctx)

	row := toCustomerRow(c)
	row.UpdatedAt = time.Now().UTC()
	row.UpdatedBy = types.GetUserID(ctx)

	res := db.Model(&customerRow{}).
		Where("id = ? AND tenant_id = ?", c.ID, types.GetTenantID(ctx)).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(row)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update customer").
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return ierr.NewError("customer not found").
			WithReportableDetails(map[string]any{"customer_id": c.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// DebitBalances performs a guarded in-place decrement so two concurrent
// completions cannot drive a balance negative. The WHERE clause carries
// the sufficiency check; zero rows affected means either a missing
// customer or an insufficient balance, disambiguated with a follow-up read.
func (r *customerRepository) DebitBalances(ctx context.Context, id string, loyaltyPoints, walletAmount decimal.Decimal) error {
	if loyaltyPoints.IsZero() && walletAmount.IsZero() {
		return nil
	}

	db := r.client.Querier(ctx)

	res := db.Model(&customerRow{}).
		Where("id = ? AND tenant_id = ? AND loyalty_points >= ? AND wallet_balance >= ?",
			id, types.GetTenantID(ctx), loyaltyPoints, walletAmount).
		Updates(map[string]any{
			"loyalty_points": gorm.Expr("loyalty_points - ?", loyaltyPoints),
			"wallet_balance": gorm.Expr("wallet_balance - ?", walletAmount),
			"updated_at":     time.Now().UTC(),
			"updated_by":     types.GetUserID(ctx),
		})
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to debit customer balances").
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ierr.NewError("insufficient customer balance").
			WithHint("Customer balances cannot cover the redeemed credits").
			WithReportableDetails(map[string]any{
				"customer_id":    id,
				"loyalty_points": loyaltyPoints,
				"wallet_amount":  walletAmount,
			}).
			Mark(ierr.ErrBusinessRule)
	}
	return nil
}
