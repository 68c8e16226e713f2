package taxes

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/store"
	"github.com/knawat/mp-backend/internal/domain/tax"
)

// OperatorNotifier alerts the operations team about tax data gaps.
type OperatorNotifier interface {
	NotifyOperators(ctx context.Context, subject, body string) error
}

// Runner executes a side effect without blocking or failing the caller.
type Runner interface {
	Go(name string, fn func(context.Context) error)
}

// Resolution is the outcome of resolving one line item. Either Tax is set, or
// Code/Message carry a soft signal the pipeline turns into a warning.
type Resolution struct {
	Tax     *tax.Tax
	Code    int
	Message string
}

// Applied reports whether a concrete tax row was resolved.
func (r Resolution) Applied() bool {
	return r.Tax != nil
}

// Warning converts a soft signal into an order warning for the item's SKU.
func (r Resolution) Warning(sku string) order.Warning {
	return order.NewSKUWarning(r.Code, r.Message, []string{sku})
}

// Resolver maps (store, line item) pairs to tax rows. All expected gaps come
// back as soft signals; only repository faults surface as errors.
type Resolver struct {
	taxes     tax.Repository
	countries map[string]struct{}
	notifier  OperatorNotifier
	runner    Runner
	logger    *zap.Logger
}

// NewResolver creates a tax resolver. taxableCountries is the operator-managed
// allow-list of countries the marketplace collects tax in.
func NewResolver(taxes tax.Repository, taxableCountries []string, notifier OperatorNotifier, runner Runner, logger *zap.Logger) *Resolver {
	countries := make(map[string]struct{}, len(taxableCountries))
	for _, c := range taxableCountries {
		countries[c] = struct{}{}
	}
	return &Resolver{
		taxes:     taxes,
		countries: countries,
		notifier:  notifier,
		runner:    runner,
		logger:    logger,
	}
}

// Resolve returns the tax row for the store's billing country and the item's
// tax class. Soft failures are ordered: missing store address beats missing
// tax class beats unlisted tax class.
func (r *Resolver) Resolve(ctx context.Context, st *store.Store, item order.Item) (Resolution, error) {
	country := st.TaxCountry()
	if country == "" {
		return Resolution{Code: order.CodeMissingStoreAddr, Message: "Missing Store Address"}, nil
	}
	if _, taxable := r.countries[country]; !taxable {
		return Resolution{Code: order.CodeNoTaxForCountry, Message: "No taxes for this country"}, nil
	}
	if item.TaxClass == "" {
		r.notify(fmt.Sprintf("Product missing tax class: %s", item.SKU),
			fmt.Sprintf("Product %s ordered by store %s has no tax class attribute.", item.SKU, st.URL))
		return Resolution{Code: order.CodeTaxMaybeLater, Message: "Tax Maybe Applied Later"}, nil
	}

	row, err := r.taxes.FindByCountryAndClass(ctx, country, item.TaxClass)
	if err != nil {
		return Resolution{}, err
	}
	if row == nil {
		r.notify(fmt.Sprintf("Tax class not listed: %s/%s", country, item.TaxClass),
			fmt.Sprintf("No tax row covers class %q for country %s (store %s, product %s).",
				item.TaxClass, country, st.URL, item.SKU))
		return Resolution{Code: order.CodeTaxClassNotListed, Message: "Tax class not listed for country"}, nil
	}
	return Resolution{Tax: row}, nil
}

func (r *Resolver) notify(subject, body string) {
	if r.notifier == nil {
		return
	}
	r.runner.Go("tax-operator-alert", func(ctx context.Context) error {
		return r.notifier.NotifyOperators(ctx, subject, body)
	})
}
