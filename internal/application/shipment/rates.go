package shipment

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/shipment"
	"github.com/knawat/mp-backend/internal/domain/store"
)

// Quote is the selected shipping rate for one order.
type Quote struct {
	Courier         string
	Cost            decimal.Decimal
	DeliveryDaysMin int
	DeliveryDaysMax int

	// CourierMatched is false when the caller asked for a specific courier
	// and the engine had to fall back to a different one.
	CourierMatched bool
}

// RateEngine selects the cheapest shipping rule covering an order. Pure over
// the current policy table; no side effects.
type RateEngine struct {
	policies shipment.Repository
}

// NewRateEngine creates a rate engine backed by the policy table.
func NewRateEngine(policies shipment.Repository) *RateEngine {
	return &RateEngine{policies: policies}
}

// Rate returns the cheapest rule shipping the items to destCountry, or nil
// when no policy covers the route. A requested courier is preferred when any
// of its rules match; otherwise the overall cheapest wins and the quote is
// flagged as a courier mismatch.
func (e *RateEngine) Rate(ctx context.Context, items []order.Item, destCountry string, st *store.Store, requestedCourier string) (*Quote, error) {
	policies, err := e.policies.FindByCountry(ctx, destCountry)
	if err != nil {
		return nil, err
	}

	weight, price := shipmentUnits(items)

	var matches []shipment.Rule
	for i := range policies {
		p := &policies[i]
		if !p.ShipsFrom(st.ShipFromCity, st.ShipFromCountry) {
			continue
		}
		for _, rule := range p.Rules {
			units := weight
			if rule.Type == shipment.RuleTypePrice {
				units = price
			}
			if rule.Covers(units) {
				matches = append(matches, rule)
			}
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// Stable sort so declaration order breaks cost ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Cost.LessThan(matches[j].Cost)
	})

	preferred := requestedCourier
	if preferred == "" {
		preferred = st.ShipmentMethod
	}
	if preferred != "" {
		for _, rule := range matches {
			if rule.Courier == preferred {
				return quoteFor(rule, true), nil
			}
		}
	}

	cheapest := matches[0]
	matched := requestedCourier == "" || cheapest.Courier == requestedCourier
	return quoteFor(cheapest, matched), nil
}

func quoteFor(rule shipment.Rule, matched bool) *Quote {
	return &Quote{
		Courier:         rule.Courier,
		Cost:            rule.Cost,
		DeliveryDaysMin: rule.DeliveryDaysMin,
		DeliveryDaysMax: rule.DeliveryDaysMax,
		CourierMatched:  matched,
	}
}

// shipmentUnits totals the order's weight and sale price across all lines.
func shipmentUnits(items []order.Item) (weight, price decimal.Decimal) {
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		weight = weight.Add(item.Weight.Mul(qty))
		price = price.Add(item.Rate.Mul(qty))
	}
	return weight, price
}
