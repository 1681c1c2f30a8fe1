package models

import "fmt"

// Kind identifies which document family a Document belongs to.
// Each kind has its own status set and transition table.
type Kind string

const (
	KindPurchaseOrder Kind = "purchase_order"
	KindInvoice       Kind = "invoice"
)

// Kinds lists every supported document kind.
var Kinds = []Kind{KindPurchaseOrder, KindInvoice}

// ParseKind converts a raw string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown document kind %q", s)
	}
	return k, nil
}

// IsValid reports whether k is a supported kind.
func (k Kind) IsValid() bool {
	return k == KindPurchaseOrder || k == KindInvoice
}

// String returns the underlying string value.
func (k Kind) String() string {
	return string(k)
}

// NumberPrefix is the leading segment of generated document numbers.
func (k Kind) NumberPrefix() string {
	if k == KindInvoice {
		return "INV"
	}
	return "PO"
}

// IssueDateField is the wire name of the kind's order/issue date.
func (k Kind) IssueDateField() string {
	if k == KindInvoice {
		return "issue_date"
	}
	return "order_date"
}

// DueDateField is the wire name of the kind's delivery/due date.
func (k Kind) DueDateField() string {
	if k == KindInvoice {
		return "due_date"
	}
	return "delivery_date"
}
