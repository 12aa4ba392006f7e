package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonhq/salonhq/internal/cache"
	"github.com/salonhq/salonhq/internal/domain/catalog"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// catalogCacheTTL bounds how stale a price or tax rate can be at checkout
const catalogCacheTTL = 5 * time.Minute

type catalogRepository struct {
	client postgres.IClient
	log    *logger.Logger
	cache  cache.Cache
}

func NewCatalogRepository(client postgres.IClient, log *logger.Logger, c cache.Cache) catalog.Repository {
	return &catalogRepository{client: client, log: log, cache: c}
}

type catalogItemRow struct {
	ID        string            `gorm:"column:id;primaryKey"`
	ItemType  string            `gorm:"column:item_type;index"`
	Name      string            `gorm:"column:name"`
	UnitPrice decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2)"`
	TaxRate   decimal.Decimal   `gorm:"column:tax_rate;type:numeric(5,2)"`
	Variants  []catalog.Variant `gorm:"column:variants;type:jsonb;serializer:json"`

	TenantID  string    `gorm:"column:tenant_id;index"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

func (catalogItemRow) TableName() string {
	return "catalog_items"
}

func toCatalogItemRow(i *catalog.Item) *catalogItemRow {
	return &catalogItemRow{
		ID:        i.ID,
		ItemType:  i.ItemType.String(),
		Name:      i.Name,
		UnitPrice: i.UnitPrice,
		TaxRate:   i.TaxRate,
		Variants:  i.Variants,
		TenantID:  i.TenantID,
		Status:    i.Status.String(),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		CreatedBy: i.CreatedBy,
		UpdatedBy: i.UpdatedBy,
	}
}

func (r *catalogItemRow) toDomain() *catalog.Item {
	return &catalog.Item{
		ID:        r.ID,
		ItemType:  types.LineItemType(r.ItemType),
		Name:      r.Name,
		UnitPrice: r.UnitPrice,
		TaxRate:   r.TaxRate,
		Variants:  r.Variants,
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

func catalogCacheKey(tenantID, itemID string) string {
	return fmt.Sprintf("catalog:%s:%s", tenantID, itemID)
}

func (r *catalogRepository) Get(ctx context.Context, id string) (*catalog.Item, error) {
	key := catalogCacheKey(types.GetTenantID(ctx), id)
	if cached, ok := r.cache.Get(ctx, key); ok {
		if item, ok := cached.(*catalog.Item); ok {
			return item, nil
		}
	}

	db := r.client.Querier(ctx)

	var row catalogItemRow
	err := db.Where("id = ? AND tenant_id = ? AND status = ?",
		id, types.GetTenantID(ctx), types.StatusActive.String()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("catalog item not found").
				WithHintf("Catalog item %s does not exist", id).
				WithReportableDetails(map[string]any{"item_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get catalog item").
			Mark(ierr.ErrDatabase)
	}

	item := row.toDomain()
	r.cache.Set(ctx, key, item, catalogCacheTTL)
	return item, nil
}

func (r *catalogRepository) Create(ctx context.Context, item *catalog.Item) error {
	db := r.client.Querier(ctx)

	if err := db.Create(toCatalogItemRow(item)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("A catalog item with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create catalog item").
			Mark(ierr.ErrDatabase)
	}
	r.cache.Delete(ctx, catalogCacheKey(item.TenantID, item.ID))
	return nil
}
