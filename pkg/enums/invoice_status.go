package enums

import "fmt"

// InvoiceStatus describes the allowed values for the `status` column in invoices.
// The lifecycle is strictly forward: draft, ready, submitted, then paid or void.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusReady     InvoiceStatus = "ready"
	InvoiceStatusSubmitted InvoiceStatus = "submitted"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusVoid      InvoiceStatus = "void"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusReady,
	InvoiceStatusSubmitted,
	InvoiceStatusPaid,
	InvoiceStatusVoid,
}

var invoiceStatusRank = map[InvoiceStatus]int{
	InvoiceStatusDraft:     0,
	InvoiceStatusReady:     1,
	InvoiceStatusSubmitted: 2,
	InvoiceStatusPaid:      3,
	InvoiceStatusVoid:      3,
}

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusVoid
}

// LocksEdits reports whether manual edits to the invoice require an
// owner override at this status.
func (s InvoiceStatus) LocksEdits() bool {
	return invoiceStatusRank[s] >= invoiceStatusRank[InvoiceStatusReady]
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// next. Movement is forward-only and terminal states admit nothing.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	switch s {
	case InvoiceStatusDraft:
		return next == InvoiceStatusReady
	case InvoiceStatusReady:
		return next == InvoiceStatusSubmitted
	case InvoiceStatusSubmitted:
		return next == InvoiceStatusPaid || next == InvoiceStatusVoid
	}
	return false
}

// ParseInvoiceStatus converts the raw string to InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
