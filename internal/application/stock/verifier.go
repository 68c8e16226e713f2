package stock

import (
	"context"

	"github.com/knawat/mp-backend/internal/domain/catalog"
	"github.com/knawat/mp-backend/internal/domain/order"
)

// ShortLine records a line whose requested quantity exceeded availability.
type ShortLine struct {
	SKU              string
	QuantityRequired int
	Quantity         int
}

// Result partitions the requested lines into exclusive buckets. Items holds
// the usable subset forwarded downstream: enough-stock lines as requested plus
// not-enough-stock lines clamped to availability, priced from the catalog.
type Result struct {
	Items    []order.Item
	Products []catalog.Product

	EnoughStock    []string
	NotEnoughStock []ShortLine
	OutOfStock     []string
	NotKnawat      []string
}

// Usable reports whether the order has at least one sellable line left.
func (r *Result) Usable() bool {
	return len(r.Items) > 0
}

// Warnings converts the anomaly buckets into order warnings.
func (r *Result) Warnings() []order.Warning {
	var ws []order.Warning
	if len(r.NotKnawat) > 0 {
		ws = append(ws, order.NewSKUWarning(order.CodeNotKnawat,
			"Following products are not Knawat products, they have been removed from the order", r.NotKnawat))
	}
	if len(r.OutOfStock) > 0 {
		ws = append(ws, order.NewSKUWarning(order.CodeOutOfStock,
			"Following products are out of stock, they have been removed from the order", r.OutOfStock))
	}
	if len(r.NotEnoughStock) > 0 {
		skus := make([]string, len(r.NotEnoughStock))
		for i, s := range r.NotEnoughStock {
			skus[i] = s.SKU
		}
		ws = append(ws, order.NewSKUWarning(order.CodeNotEnoughStock,
			"Quantities of following products have been reduced to the available stock", skus))
	}
	return ws
}

// Verifier classifies requested order lines against catalog availability.
// Read-only; the pipeline decides fatal vs. warning treatment.
type Verifier struct {
	products catalog.ProductRepository
}

// NewVerifier creates a stock verifier backed by the given catalog.
func NewVerifier(products catalog.ProductRepository) *Verifier {
	return &Verifier{products: products}
}

// Verify partitions items into enough-stock, not-enough-stock, out-of-stock
// and not-Knawat buckets. Every input SKU lands in exactly one bucket. Usable
// lines come back with rate, purchase rate and weight filled from the catalog
// and quantities clamped to availability.
func (v *Verifier) Verify(ctx context.Context, items []order.Item) (*Result, error) {
	products, err := v.products.FindBySKUs(ctx, skusOf(items))
	if err != nil {
		return nil, err
	}

	variations := make(map[string]*catalog.Variation, len(items))
	for i := range products {
		for j := range products[i].Variations {
			va := &products[i].Variations[j]
			variations[va.SKU] = va
		}
	}

	result := &Result{Products: products}
	for _, item := range items {
		va, ok := variations[item.SKU]
		if !ok {
			result.NotKnawat = append(result.NotKnawat, item.SKU)
			continue
		}
		if va.Quantity == 0 {
			result.OutOfStock = append(result.OutOfStock, item.SKU)
			continue
		}

		line := item
		line.Rate = va.SalePrice
		line.PurchaseRate = va.PurchasePrice
		line.Weight = va.Weight

		if va.Quantity < item.Quantity {
			line.Quantity = va.Quantity
			result.NotEnoughStock = append(result.NotEnoughStock, ShortLine{
				SKU:              item.SKU,
				QuantityRequired: item.Quantity,
				Quantity:         va.Quantity,
			})
		} else {
			result.EnoughStock = append(result.EnoughStock, item.SKU)
		}
		result.Items = append(result.Items, line)
	}
	return result, nil
}

func skusOf(items []order.Item) []string {
	skus := make([]string, len(items))
	for i, item := range items {
		skus[i] = item.SKU
	}
	return skus
}
