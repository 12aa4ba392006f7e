package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/salonhq/salonhq/internal/domain/benefit"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type benefitRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewBenefitRepository(client postgres.IClient, log *logger.Logger) benefit.Repository {
	return &benefitRepository{client: client, log: log}
}

type benefitRow struct {
	ID               string           `gorm:"column:id;primaryKey"`
	CustomerID       string           `gorm:"column:customer_id;index"`
	BenefitType      string           `gorm:"column:benefit_type;index"`
	Name             string           `gorm:"column:name"`
	Calculation      string           `gorm:"column:calculation"`
	Value            decimal.Decimal  `gorm:"column:value;type:numeric(12,2)"`
	MaxDiscount      *decimal.Decimal `gorm:"column:max_discount;type:numeric(12,2)"`
	ExpiresAt        *time.Time       `gorm:"column:expires_at"`
	RemainingCredits *int             `gorm:"column:remaining_credits"`
	MaxRedemptions   *int             `gorm:"column:max_redemptions"`
	TotalRedemptions int              `gorm:"column:total_redemptions"`

	TenantID  string    `gorm:"column:tenant_id;index"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

func (benefitRow) TableName() string {
	return "benefits"
}

func toBenefitRow(b *benefit.Benefit) *benefitRow {
	return &benefitRow{
		ID:               b.ID,
		CustomerID:       b.CustomerID,
		BenefitType:      b.BenefitType.String(),
		Name:             b.Name,
		Calculation:      b.Calculation.String(),
		Value:            b.Value,
		MaxDiscount:      b.MaxDiscount,
		ExpiresAt:        b.ExpiresAt,
		RemainingCredits: b.RemainingCredits,
		MaxRedemptions:   b.MaxRedemptions,
		TotalRedemptions: b.TotalRedemptions,
		TenantID:         b.TenantID,
		Status:           b.Status.String(),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		CreatedBy:        b.CreatedBy,
		UpdatedBy:        b.UpdatedBy,
	}
}

func (r *benefitRow) toDomain() *benefit.Benefit {
	return &benefit.Benefit{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		BenefitType:      types.BenefitType(r.BenefitType),
		Name:             r.Name,
		Calculation:      types.CalculationType(r.Calculation),
		Value:            r.Value,
		MaxDiscount:      r.MaxDiscount,
		ExpiresAt:        r.ExpiresAt,
		RemainingCredits: r.RemainingCredits,
		MaxRedemptions:   r.MaxRedemptions,
		TotalRedemptions: r.TotalRedemptions,
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

func (r *benefitRepository) Create(ctx context.Context, b *benefit.Benefit) error {
	db := r.client.Querier(ctx)

	if err := db.Create(toBenefitRow(b)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("A benefit with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create benefit").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *benefitRepository) Get(ctx context.Context, id string) (*benefit.Benefit, error) {
	db := r.client.Querier(ctx)

	var row benefitRow
	err := db.Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("benefit not found").
				WithHintf("Benefit %s does not exist", id).
				WithReportableDetails(map[string]any{"benefit_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get benefit").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *benefitRepository) Update(ctx context.Context, b *benefit.Benefit) error {
	db := r.client.Querier(ctx)

	row := toBenefitRow(b)
	row.UpdatedAt = time.Now().UTC()
	row.UpdatedBy = types.GetUserID(ctx)

	res := db.Model(&benefitRow{}).
		Where("id = ? AND tenant_id = ?", b.ID, types.GetTenantID(ctx)).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(row)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update benefit").
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return ierr.NewError("benefit not found").
			WithReportableDetails(map[string]any{"benefit_id": b.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *benefitRepository) ListByCustomer(ctx context.Context, customerID string) ([]*benefit.Benefit, error) {
	db := r.client.Querier(ctx)

	var rows []*benefitRow
	err := db.Where("tenant_id = ? AND customer_id = ? AND status = ?",
		types.GetTenantID(ctx), customerID, types.StatusActive.String()).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list benefits for customer").
			Mark(ierr.ErrDatabase)
	}

	benefits := make([]*benefit.Benefit, 0, len(rows))
	for _, row := range rows {
		benefits = append(benefits, row.toDomain())
	}
	return benefits, nil
}

// IncrementRedemptions bumps the redemption counter and, for packages,
// burns one credit. The guard keeps remaining_credits from going negative
// under concurrent completions.
func (r *benefitRepository) IncrementRedemptions(ctx context.Context, id string) error {
	db := r.client.Querier(ctx)

	res := db.Model(&benefitRow{}).
		Where("id = ? AND tenant_id = ? AND (remaining_credits IS NULL OR remaining_credits > 0)",
			id, types.GetTenantID(ctx)).
		Updates(map[string]any{
			"total_redemptions": gorm.Expr("total_redemptions + 1"),
			"remaining_credits": gorm.Expr("CASE WHEN remaining_credits IS NULL THEN NULL ELSE GREATEST(remaining_credits - 1, 0) END"),
			"updated_at":        time.Now().UTC(),
			"updated_by":        types.GetUserID(ctx),
		})
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to record benefit redemption").
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ierr.NewError("package credits exhausted").
			WithHint("This package has no remaining credits").
			WithReportableDetails(map[string]any{"benefit_id": id}).
			Mark(ierr.ErrBusinessRule)
	}
	return nil
}
