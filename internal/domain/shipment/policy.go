package shipment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/shared"
)

// RuleType selects the banding dimension a rule applies to.
type RuleType string

const (
	RuleTypeWeight RuleType = "weight"
	RuleTypePrice  RuleType = "price"
)

// Rule is a single shipping rate band within a policy.
type Rule struct {
	Courier         string
	UnitsMin        decimal.Decimal
	UnitsMax        decimal.Decimal
	Type            RuleType
	Cost            decimal.Decimal
	DeliveryDaysMin int
	DeliveryDaysMax int
}

// Validate enforces band sanity.
func (r Rule) Validate() error {
	if r.UnitsMin.GreaterThan(r.UnitsMax) {
		return shared.NewDomainError("INVALID_RULE", "Rule units_min cannot exceed units_max")
	}
	if r.Cost.IsNegative() {
		return shared.NewDomainError("INVALID_RULE", "Rule cost cannot be negative")
	}
	return nil
}

// Covers reports whether the band covers the given units value.
func (r Rule) Covers(units decimal.Decimal) bool {
	return units.GreaterThanOrEqual(r.UnitsMin) && units.LessThanOrEqual(r.UnitsMax)
}

// Origin is a ship-from location. "*" and "ZZ" act as wildcards.
type Origin struct {
	City    string
	Country string
}

const originWildcard = "*"

// countryWildcard is the ISO "user-assigned" code policies use to mean any
// origin country.
const countryWildcard = "ZZ"

// Matches reports whether the origin covers the given city/country pair.
func (o Origin) Matches(city, country string) bool {
	cityOK := o.City == "" || o.City == originWildcard || o.City == city
	countryOK := o.Country == "" || o.Country == originWildcard || o.Country == countryWildcard || o.Country == country
	return cityOK && countryOK
}

// Policy groups the rate rules a logistics partner offers to a set of
// destination countries.
type Policy struct {
	Name      string
	Countries []string
	Rules     []Rule
	ShipFrom  []Origin
}

// ShipsTo reports whether the policy covers the destination country.
func (p *Policy) ShipsTo(country string) bool {
	for _, c := range p.Countries {
		if c == country {
			return true
		}
	}
	return false
}

// ShipsFrom reports whether the policy can originate from the given location.
// A policy without ship_from entries ships from anywhere.
func (p *Policy) ShipsFrom(city, country string) bool {
	if len(p.ShipFrom) == 0 {
		return true
	}
	for _, o := range p.ShipFrom {
		if o.Matches(city, country) {
			return true
		}
	}
	return false
}

// Repository is the shipment policy table lookup contract.
type Repository interface {
	// FindByCountry returns every policy whose countries list includes the
	// destination.
	FindByCountry(ctx context.Context, country string) ([]Policy, error)
}
