package order

// Status is the internal order status as persisted in the OMS ledger.
type Status string

const (
	StatusDraft Status = "draft"
	StatusOpen  Status = "open"
	StatusVoid  Status = "void"

	// StatusInvoiced is a derived, locally cached status set after the
	// delayed invoice step completes. The OMS record stays "open".
	StatusInvoiced Status = "invoiced"
)

// Public status vocabulary used on the storefront-facing surface.
const (
	PublicPending    = "pending"
	PublicProcessing = "processing"
	PublicCancelled  = "cancelled"
)

// statusByPublic maps the storefront vocabulary to the internal one.
var statusByPublic = map[string]Status{
	PublicPending:    StatusDraft,
	PublicProcessing: StatusOpen,
	PublicCancelled:  StatusVoid,
	// Callers occasionally send the internal names back; accept them.
	string(StatusDraft): StatusDraft,
	string(StatusOpen):  StatusOpen,
	string(StatusVoid):  StatusVoid,
}

// StatusFromPublic normalizes a caller-supplied status value.
func StatusFromPublic(s string) (Status, bool) {
	st, ok := statusByPublic[s]
	return st, ok
}

// IsValid reports whether the status is one the OMS accepts.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusVoid:
		return true
	}
	return false
}

// Public returns the storefront-facing name for the status.
func (s Status) Public() string {
	switch s {
	case StatusDraft:
		return PublicPending
	case StatusOpen:
		return PublicProcessing
	case StatusVoid:
		return PublicCancelled
	case StatusInvoiced:
		return string(StatusInvoiced)
	}
	return string(s)
}

// DisplayName returns the support-facing name used in guard messages.
func (s Status) DisplayName() string {
	switch s {
	case StatusDraft:
		return "Order Placed"
	case StatusOpen:
		return "Processing"
	case StatusVoid:
		return "Cancelled"
	}
	return string(s)
}

// Mutable reports whether update/cancel operations are allowed. Only draft
// and open orders may change; void and invoiced orders are terminal.
func (s Status) Mutable() bool {
	return s == StatusDraft || s == StatusOpen
}
