package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Variation is a sellable product variation. Quantity is the stock snapshot
// imported from the search/catalog index.
type Variation struct {
	SKU           string
	Quantity      int
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	Weight        decimal.Decimal // kilograms
}

// Product is a catalog product with its variations.
type Product struct {
	SKU        string
	Name       string
	Archived   bool
	SalesQty   int
	Variations []Variation
}

// FindVariation returns the variation matching the SKU, or nil.
func (p *Product) FindVariation(sku string) *Variation {
	for i := range p.Variations {
		if p.Variations[i].SKU == sku {
			return &p.Variations[i]
		}
	}
	return nil
}

// ProductRepository is the catalog/stock lookup contract. Read-only from the
// order pipeline's point of view except for the best-effort sales counter.
type ProductRepository interface {
	// FindBySKUs returns the products owning any of the given variation SKUs.
	// Unknown SKUs are simply absent from the result.
	FindBySKUs(ctx context.Context, skus []string) ([]Product, error)
	// IncrementSalesQuantity bumps the sales counter for a variation's
	// product. Advisory; callers treat failures as non-fatal.
	IncrementSalesQuantity(ctx context.Context, sku string, qty int) error
}
