package models

// Status is a document lifecycle state. Membership is kind-specific:
// use Kind.HasStatus to check whether a status belongs to a kind.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusCompleted Status = "COMPLETED"
	StatusReviewing Status = "REVIEWING"
	StatusApproved  Status = "APPROVED"
	StatusPaid      Status = "PAID"
	StatusRejected  Status = "REJECTED"
	StatusOverdue   Status = "OVERDUE"
)

var kindStatuses = map[Kind][]Status{
	KindPurchaseOrder: {
		StatusDraft, StatusPending, StatusSent, StatusCompleted, StatusRejected, StatusOverdue,
	},
	KindInvoice: {
		StatusDraft, StatusPending, StatusReviewing, StatusApproved, StatusPaid, StatusRejected, StatusOverdue,
	},
}

// String returns the underlying string value.
func (s Status) String() string {
	return string(s)
}

// Statuses returns the statuses defined for the kind, in lifecycle order.
func (k Kind) Statuses() []Status {
	out := make([]Status, len(kindStatuses[k]))
	copy(out, kindStatuses[k])
	return out
}

// HasStatus reports whether s is a member of the kind's status enum.
func (k Kind) HasStatus(s Status) bool {
	for _, member := range kindStatuses[k] {
		if member == s {
			return true
		}
	}
	return false
}
