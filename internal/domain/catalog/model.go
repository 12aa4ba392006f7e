package catalog

import (
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
)

// Item represents a sellable catalog entry: a service, retail product,
// combo or package. Checkout only needs the pricing and tax surface;
// durations, stock levels and staff skill mappings stay with the catalog
// collaborator.
type Item struct {
	ID       string             `json:"id"`
	ItemType types.LineItemType `json:"item_type"`
	Name     string             `json:"name"`
	// UnitPrice is the list price per unit in the tenant's base currency
	UnitPrice decimal.Decimal `json:"unit_price"`
	// TaxRate is the combined GST percentage for this item
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Variants []Variant       `json:"variants,omitempty"`

	types.BaseModel
}

// Variant is a priced variation of an item, e.g. hair length tiers
type Variant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// UnitPrice overrides the parent item price
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PriceFor returns the unit price for the given variant, falling back to
// the item price when variantID is empty.
func (i *Item) PriceFor(variantID string) (decimal.Decimal, error) {
	if variantID == "" {
		return i.UnitPrice, nil
	}
	for _, v := range i.Variants {
		if v.ID == variantID {
			return v.UnitPrice, nil
		}
	}
	return decimal.Zero, ierr.NewError("variant not found").
		WithHint("The requested variant does not exist for this item").
		WithReportableDetails(map[string]any{
			"item_id":    i.ID,
			"variant_id": variantID,
		}).
		Mark(ierr.ErrNotFound)
}

func (i *Item) Validate() error {
	if err := i.ItemType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid item type").
			Mark(ierr.ErrValidation)
	}
	if i.UnitPrice.IsNegative() {
		return ierr.NewError("unit price must be non negative").
			WithHint("Item price cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if i.TaxRate.IsNegative() || i.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("tax rate must be between 0 and 100").
			WithHint("Tax rate is a percentage between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}
