package order

// Marketplace warning and soft-failure codes. These travel in the response
// envelope and the audit log; storefront integrations match on them.
const (
	CodeNotKnawat          = 1101
	CodeOutOfStock         = 1102
	CodeNotEnoughStock     = 1103
	CodeMissingBillingData = 1104
	CodeCouponNotApplied   = 1105
	CodeCourierMismatch    = 2102

	CodeNoTaxForCountry   = 0
	CodeMissingStoreAddr  = 1234
	CodeTaxClassNotListed = 2134
	CodeTaxMaybeLater     = 3241
)

// Warning is a non-fatal anomaly surfaced alongside a successful response.
// Warnings are persisted on the order as a typed list, never as an opaque
// serialized string.
type Warning struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	SKUs    []string `json:"skus,omitempty"`
}

// NewWarning creates a warning without SKU context.
func NewWarning(code int, message string) Warning {
	return Warning{Code: code, Message: message}
}

// NewSKUWarning creates a warning that names the affected SKUs.
func NewSKUWarning(code int, message string, skus []string) Warning {
	return Warning{Code: code, Message: message, SKUs: skus}
}
