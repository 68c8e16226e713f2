package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Tax is an operator-maintained tax rate for a (country, class) pair.
// Read-only to the order pipeline.
type Tax struct {
	ID          string
	Country     string
	Classes     []string
	Percentage  decimal.Decimal
	IsInclusive bool
	OmsID       string
}

// AppliesTo reports whether the tax row covers the given class.
func (t *Tax) AppliesTo(class string) bool {
	for _, c := range t.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Repository is the tax table lookup contract.
type Repository interface {
	// FindByCountryAndClass returns the tax row for the pair, or nil when no
	// row matches (not an error).
	FindByCountryAndClass(ctx context.Context, country, class string) (*Tax, error)
}
